package callsession

import "errors"

var (
	// ErrSessionEnded is returned for operations on a session whose
	// lifecycle has already completed.
	ErrSessionEnded = errors.New("session ended")
	// ErrProtocolViolation marks an event or transition the lifecycle
	// graph does not allow. Violations are logged and the offending
	// event dropped; the session keeps running.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrNoHumanReachable is the terminal failure for calls where only a
	// machine answered or nobody did.
	ErrNoHumanReachable = errors.New("no human reachable")
)

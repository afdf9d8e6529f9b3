// Package carrier defines the contract for placing and controlling
// outbound phone calls. Implementations wrap one telephony provider;
// everything above this package is provider-neutral.
package carrier

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransferUnavailable is returned when no customer leg can be
// bridged onto the call.
var ErrTransferUnavailable = errors.New("transfer unavailable")

// ActionError wraps a failed carrier control action. Actions are retried
// once by the session before the failure is surfaced.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("carrier action %s failed: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// DialParams describe one outbound call.
type DialParams struct {
	From string
	To   string
	// SessionID correlates carrier webhooks back to the session.
	SessionID string
}

// Controller places and steers calls with one telephony provider.
type Controller interface {
	// PlaceCall starts dialing and returns the provider's call
	// identifier. Signaling results arrive through webhooks, not here.
	PlaceCall(ctx context.Context, params DialParams) (callUUID string, err error)
	// SendDigits plays DTMF digits into the call.
	SendDigits(ctx context.Context, callUUID string, digits string) error
	// Bridge joins the customer leg onto the call. Once bridged the
	// agent never speaks again.
	Bridge(ctx context.Context, callUUID string, customerNumber string) error
	// HangUp ends the call. Hanging up an already-ended call is not an
	// error.
	HangUp(ctx context.Context, callUUID string) error
	// StartRecording begins call recording and returns the recording URL.
	StartRecording(ctx context.Context, callUUID string) (string, error)
}

// MediaStream is the bidirectional audio channel of one call.
type MediaStream interface {
	// SendAudio queues line-encoded audio for playback into the call.
	SendAudio(audio []byte) error
	// Mark requests a playback checkpoint; the carrier acknowledges it
	// after all audio queued before the mark has played.
	Mark(name string) error
	// ClearAudio drops any queued unplayed audio.
	ClearAudio() error
	Close() error
}

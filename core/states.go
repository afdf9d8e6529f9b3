package callsession

// State is the lifecycle state of one call session.
type State string

const (
	StateDialing   State = "dialing"
	StateRinging   State = "ringing"
	StateConnected State = "connected"
	StateNoAnswer  State = "no_answer"
	StateBusy      State = "busy"
	StateFailed    State = "failed"

	StateInConversation State = "in_conversation"
	StateTransferred    State = "transferred"
	StateVoicemail      State = "voicemail"

	StateEnded State = "ended"
)

// validTransitions is the full lifecycle graph. Anything not listed is a
// protocol violation.
var validTransitions = map[State][]State{
	StateDialing:   {StateRinging, StateConnected, StateNoAnswer, StateBusy, StateFailed, StateEnded},
	StateRinging:   {StateConnected, StateNoAnswer, StateBusy, StateFailed, StateEnded},
	StateConnected: {StateInConversation, StateTransferred, StateVoicemail, StateEnded},

	StateInConversation: {StateTransferred, StateVoicemail, StateEnded},
	StateTransferred:    {StateEnded},
	StateVoicemail:      {StateEnded},

	StateNoAnswer: {StateEnded},
	StateBusy:     {StateEnded},
	StateFailed:   {StateEnded},
}

func canTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions can leave the state.
func (s State) IsTerminal() bool {
	return s == StateEnded
}

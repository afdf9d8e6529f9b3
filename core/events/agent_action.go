package events

const (
	// KindAgentSpeakStarted identifies the carrier starting playback of an
	// agent utterance.
	KindAgentSpeakStarted Kind = "agent_action.speak_started"
	// KindAgentSpeakFinished identifies playback completing on the line.
	KindAgentSpeakFinished Kind = "agent_action.speak_finished"
	// KindAgentDigitsSent identifies a digit sequence handed to the carrier.
	KindAgentDigitsSent Kind = "agent_action.digits_sent"
	// KindAgentBridged identifies the call legs being bridged.
	KindAgentBridged Kind = "agent_action.bridged"
	// KindAgentActionFailed identifies a carrier action failing after retry.
	KindAgentActionFailed Kind = "agent_action.failed"
)

// AgentSpeakStarted marks playback of an agent utterance starting.
type AgentSpeakStarted struct {
	Base
	Text string
}

func NewAgentSpeakStarted(text string) AgentSpeakStarted {
	return AgentSpeakStarted{Base: NewBase(KindAgentSpeakStarted), Text: text}
}

// AgentSpeakFinished marks playback of an agent utterance completing.
// It is the acknowledgement that releases the one-in-flight utterance gate.
type AgentSpeakFinished struct {
	Base
	Text string
}

func NewAgentSpeakFinished(text string) AgentSpeakFinished {
	return AgentSpeakFinished{Base: NewBase(KindAgentSpeakFinished), Text: text}
}

// AgentDigitsSent marks a digit sequence handed to the carrier.
type AgentDigitsSent struct {
	Base
	Digits string
}

func NewAgentDigitsSent(digits string) AgentDigitsSent {
	return AgentDigitsSent{Base: NewBase(KindAgentDigitsSent), Digits: digits}
}

// AgentBridged marks the counterparty leg being bridged to the human
// operator leg.
type AgentBridged struct{ Base }

func NewAgentBridged() AgentBridged {
	return AgentBridged{Base: NewBase(KindAgentBridged)}
}

// AgentActionFailed marks a carrier action that failed after its retry.
type AgentActionFailed struct {
	Base
	Action string
	Reason string
}

func NewAgentActionFailed(action, reason string) AgentActionFailed {
	return AgentActionFailed{Base: NewBase(KindAgentActionFailed), Action: action, Reason: reason}
}

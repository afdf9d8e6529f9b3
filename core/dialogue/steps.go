package dialogue

// Step identifies one statement of the fixed ordering protocol, plus the
// reactive branches that never advance it.
type Step int

const (
	StepGreeting Step = iota
	StepItems
	StepSize
	StepSubstitution
	StepTotalAck
	StepPayment
	StepName
	StepAddress
	StepClose
	StepDone

	// Reactive outcomes, never part of the forward protocol order.
	StepClarify
	StepTransfer
)

// protocolOrder is the forward order used when the counterparty's speech
// requests nothing specific.
var protocolOrder = []Step{
	StepGreeting,
	StepItems,
	StepSize,
	StepPayment,
	StepName,
	StepAddress,
	StepClose,
}

func (s Step) String() string {
	switch s {
	case StepGreeting:
		return "greeting"
	case StepItems:
		return "items"
	case StepSize:
		return "size"
	case StepSubstitution:
		return "substitution"
	case StepTotalAck:
		return "total_ack"
	case StepPayment:
		return "payment"
	case StepName:
		return "name"
	case StepAddress:
		return "address"
	case StepClose:
		return "close"
	case StepDone:
		return "done"
	case StepClarify:
		return "clarify"
	case StepTransfer:
		return "transfer"
	}
	return "unknown"
}

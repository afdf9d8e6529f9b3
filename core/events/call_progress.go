package events

const (
	// KindCallRinging identifies ringback on the outbound leg.
	KindCallRinging Kind = "call_progress.ringing"
	// KindCallAnswered identifies the counterparty picking up.
	KindCallAnswered Kind = "call_progress.answered"
	// KindCallBusy identifies a busy signal.
	KindCallBusy Kind = "call_progress.busy"
	// KindCallFailed identifies a carrier-level call failure.
	KindCallFailed Kind = "call_progress.failed"
	// KindCallHungUp identifies the line going dead.
	KindCallHungUp Kind = "call_progress.hung_up"
)

// CallRinging marks ringback on the outbound leg.
type CallRinging struct{ Base }

func NewCallRinging() CallRinging {
	return CallRinging{Base: NewBase(KindCallRinging)}
}

// CallAnswered marks the counterparty picking up.
type CallAnswered struct{ Base }

func NewCallAnswered() CallAnswered {
	return CallAnswered{Base: NewBase(KindCallAnswered)}
}

// CallBusy marks a busy signal on the dialed number.
type CallBusy struct{ Base }

func NewCallBusy() CallBusy {
	return CallBusy{Base: NewBase(KindCallBusy)}
}

// CallFailed marks a carrier-level failure placing or keeping the call.
type CallFailed struct {
	Base
	Reason string
}

func NewCallFailed(reason string) CallFailed {
	return CallFailed{Base: NewBase(KindCallFailed), Reason: reason}
}

// CallHungUp marks the line going dead, from either side.
type CallHungUp struct{ Base }

func NewCallHungUp() CallHungUp {
	return CallHungUp{Base: NewBase(KindCallHungUp)}
}

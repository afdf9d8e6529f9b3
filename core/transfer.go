package callsession

import (
	"context"

	"github.com/orderline-ai/orderline/core/carrier"
	"github.com/orderline-ai/orderline/core/events"
	"github.com/orderline-ai/orderline/core/order"
)

// transfer activates the transfer gate and bridges the customer leg.
// Without a customer number there is no leg to bridge: the hand-off is
// unavailable and the agent keeps conducting the call, so the gate is
// left alone. Once a bridge is attempted the gate is monotonic; it is
// never cleared, and the agent cannot speak again even if bridging
// fails.
func (s *Session) transfer(ctx context.Context) {
	if s.customerNumber == "" {
		logger.Warn("Transfer unavailable, continuing without hand-off",
			"session_id", s.id, "error", carrier.ErrTransferUnavailable)
		s.emit(events.NewAgentActionFailed("bridge", carrier.ErrTransferUnavailable.Error()))
		return
	}

	if !s.transferred.CompareAndSwap(false, true) {
		return
	}
	s.setState(StateTransferred)

	err := s.carrierAction(ctx, "bridge", func() error {
		return s.carrier.Bridge(ctx, s.CallUUID(), s.customerNumber)
	})
	if err != nil {
		s.setErr(err)
		s.publishTerminal(order.StatusFailed)
		s.hangUp(ctx)
		s.End(ctx)
		return
	}

	s.emit(events.NewAgentBridged())
	s.publishTerminal(order.StatusTransferred)
}

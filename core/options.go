package callsession

import (
	"time"

	"github.com/orderline-ai/orderline/core/carrier"
	"github.com/orderline-ai/orderline/core/dialogue"
	"github.com/orderline-ai/orderline/core/events"
	"github.com/orderline-ai/orderline/core/order"
	"github.com/orderline-ai/orderline/core/synthesize"
	"github.com/orderline-ai/orderline/core/transcribe"
)

type Option func(*Session)

// WithID overrides the generated session identifier.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithCarrier(controller carrier.Controller) Option {
	return func(s *Session) { s.carrier = controller }
}

func WithTranscriber(client transcribe.Client) Option {
	return func(s *Session) { s.transcriber = client }
}

func WithSynthesizer(client synthesize.Client) Option {
	return func(s *Session) { s.synthesizer = client }
}

func WithStatusSink(sink order.Sink) Option {
	return func(s *Session) {
		if sink != nil {
			s.statusSink = sink
		}
	}
}

// WithEventCallback observes every processed event and every agent
// action, in processing order.
func WithEventCallback(callback func(events.Event)) Option {
	return func(s *Session) { s.onEvent = callback }
}

// WithCustomerNumber supplies the customer leg for the transfer
// hand-off. Without it any transfer fails as unavailable.
func WithCustomerNumber(number string) Option {
	return func(s *Session) { s.customerNumber = number }
}

// WithDialogueOptions passes options through to the dialogue engine.
func WithDialogueOptions(opts ...dialogue.EngineOption) Option {
	return func(s *Session) { s.dialogueOpts = append(s.dialogueOpts, opts...) }
}

func WithNoAnswerTimeout(timeout time.Duration) Option {
	return func(s *Session) { s.noAnswerTimeout = timeout }
}

// WithDeadAirTimeout sets the quiet window after which the line is
// reported as silent, or as hold music when audio keeps flowing.
func WithDeadAirTimeout(timeout time.Duration) Option {
	return func(s *Session) { s.deadAirTimeout = timeout }
}

// WithRecording starts call recording once the call is answered.
func WithRecording() Option {
	return func(s *Session) { s.recordCall = true }
}

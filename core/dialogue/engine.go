// Package dialogue decides what the agent says next on a live order call.
//
// The engine walks a fixed conversational protocol (greeting and order
// type, items, size, substitutions, total, payment, name, address for
// delivery, closing on an estimated time) but selects the step from what
// the counterparty actually asked for, not from a turn counter; real
// conversations skip and reorder steps. Exactly one decision comes out of
// each classified event: an utterance, possibly carrying an action, or an
// explicit decision to stay silent.
package dialogue

import (
	"context"

	"github.com/orderline-ai/orderline/core/events"
	"github.com/orderline-ai/orderline/core/order"
)

// Action is the structured action attached to an utterance.
type Action int

const (
	ActionNone Action = iota
	ActionPressDigits
	ActionTransfer
	ActionEndCall
)

// Utterance is a planned spoken output. It is consumed exactly once by
// the session and then discarded.
type Utterance struct {
	Text   string
	Action Action
	Digits string
}

// Decision is the engine's answer for one classified event. Silent
// decisions are explicit, not absent utterances.
type Decision struct {
	Silent    bool
	Utterance *Utterance
	Step      Step
}

// Exchange is one spoken turn of the call as the engine heard or said
// it, oldest first.
type Exchange struct {
	FromAgent bool
	Text      string
}

// Responder optionally renders the canonical line of a protocol step in
// natural wording, given the conversation so far. It may instead request
// the customer hand-off, which the engine treats exactly like a
// sensitive-data trigger; on any error the canonical line is used
// unchanged.
type Responder interface {
	ComposeTurn(ctx context.Context, step string, canonical string, history []Exchange) (line string, handOff bool, err error)
}

// IntentClassifier optionally labels utterances that keyword matching
// could not place. Labels are the step names plus "sensitive", "unclear"
// and "none"; on any error keyword matching's verdict stands.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, transcript string) (string, error)
}

// Engine is the dialogue turn engine for one session. It is driven by a
// single consumer and is not safe for concurrent use.
type Engine struct {
	order      order.Context
	responder  Responder
	classifier IntentClassifier

	done     map[Step]bool
	resolved map[string]string
	history  []Exchange
}

type EngineOption func(*Engine)

// WithResponder installs a surface-wording provider.
func WithResponder(r Responder) EngineOption {
	return func(e *Engine) { e.responder = r }
}

// WithIntentClassifier installs a model-backed fallback for utterances
// keyword matching could not place.
func WithIntentClassifier(c IntentClassifier) EngineOption {
	return func(e *Engine) { e.classifier = c }
}

func NewEngine(orderContext order.Context, opts ...EngineOption) *Engine {
	engine := &Engine{
		order:    orderContext.Snapshot(),
		done:     make(map[Step]bool),
		resolved: make(map[string]string),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Input carries everything a decision may depend on.
type Input struct {
	// TransferActive is the monotonic transfer gate. When set the engine
	// must stay silent regardless of anything else in the input.
	TransferActive bool
	Event          events.Event
}

// Decide produces exactly one decision for a classified event, applying
// the priority rules in order: transfer gate, voicemail branch, sensitive
// data trigger, protocol step, dead air.
func (e *Engine) Decide(ctx context.Context, input Input) Decision {
	if input.TransferActive {
		return Decision{Silent: true}
	}

	switch event := input.Event.(type) {
	case events.VoicemailDetected:
		// Never an order on a voicemail: the closing line carries no
		// item content and ends the call.
		return Decision{
			Utterance: &Utterance{Text: lineVoicemailClose, Action: ActionEndCall},
			Step:      StepDone,
		}

	case events.LineTranscriptFinal:
		return e.decideOnSpeech(ctx, event.Transcript)

	case events.CallRinging, events.LineSilence, events.LineHoldMusic,
		events.LineSpeechStarted, events.LineSpeechEnded:
		// Never speak into dead air, ringback, or hold music.
		return Decision{Silent: true}
	}

	return Decision{Silent: true}
}

func (e *Engine) decideOnSpeech(ctx context.Context, transcript string) Decision {
	e.history = append(e.history, Exchange{Text: transcript})

	intent := matchIntent(transcript)
	if intent == intentNone && e.classifier != nil {
		if label, err := e.classifier.ClassifyIntent(ctx, transcript); err == nil {
			intent = intentFromLabel(label)
		}
	}

	if intent == intentSensitive {
		// A payment-card request is never answered by the agent. Short
		// acknowledgement, then hand the line to the customer.
		return e.handOffDecision()
	}

	if intent == intentUnclear {
		// The only case where the protocol does not advance: ask again
		// instead of guessing a state change.
		e.history = append(e.history, Exchange{FromAgent: true, Text: lineClarify})
		return Decision{
			Utterance: &Utterance{Text: lineClarify},
			Step:      StepClarify,
		}
	}

	step := e.stepFor(intent)
	text := e.composeLine(step)
	if e.responder != nil {
		line, handOff, err := e.responder.ComposeTurn(ctx, step.String(), text, e.historyCopy())
		if err == nil {
			if handOff {
				// The model spotted a hand-off trigger the phrase tables
				// could not see.
				return e.handOffDecision()
			}
			if line != "" {
				text = line
			}
		}
	}

	e.done[step] = true
	e.history = append(e.history, Exchange{FromAgent: true, Text: text})
	utterance := &Utterance{Text: text}
	if step == StepClose {
		utterance.Action = ActionEndCall
	}
	return Decision{Utterance: utterance, Step: step}
}

func (e *Engine) handOffDecision() Decision {
	e.history = append(e.history, Exchange{FromAgent: true, Text: lineTransferAck})
	return Decision{
		Utterance: &Utterance{Text: lineTransferAck, Action: ActionTransfer},
		Step:      StepTransfer,
	}
}

// historyCopy keeps responders from aliasing the live history.
func (e *Engine) historyCopy() []Exchange {
	return append([]Exchange(nil), e.history...)
}

// stepFor maps a matched intent to the protocol step to perform now.
// Unmatched but intelligible speech falls through to the next statement
// the protocol still owes the counterparty.
func (e *Engine) stepFor(intent intent) Step {
	switch intent {
	case intentAskOrder:
		return StepItems
	case intentAskSize:
		return StepSize
	case intentUnavailable:
		return StepSubstitution
	case intentTotal:
		return StepTotalAck
	case intentAskPayment:
		return StepPayment
	case intentAskName:
		return StepName
	case intentAskAddress:
		return StepAddress
	case intentETA:
		return StepClose
	case intentGreeting:
		return StepGreeting
	}
	return e.nextPending()
}

// nextPending returns the first unperformed step of the fixed protocol,
// skipping the address statement for pickup orders.
func (e *Engine) nextPending() Step {
	for _, step := range protocolOrder {
		if step == StepAddress && !e.order.IsDelivery() {
			continue
		}
		if !e.done[step] {
			return step
		}
	}
	return StepClose
}

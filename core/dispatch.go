package callsession

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/orderline-ai/orderline/core/classify"
	"github.com/orderline-ai/orderline/core/dialogue"
	"github.com/orderline-ai/orderline/core/events"
	"github.com/orderline-ai/orderline/core/menu"
	"github.com/orderline-ai/orderline/core/order"
	"github.com/orderline-ai/orderline/core/synthesize"
)

// processQueuedEvent handles exactly one event from the queue. It runs on
// the single consumer goroutine, which is what makes event handling,
// state transitions, and utterances strictly ordered.
func (s *Session) processQueuedEvent(queuedEvent eventQueueItem) {
	ctx, span := tracer.Start(s.baseContext, "process call event")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.String("event.kind", string(queuedEvent.event.Kind())),
		attribute.Float64("event.queued_time", time.Since(queuedEvent.queuedAt).Seconds()),
	)

	s.emit(queuedEvent.event)

	switch event := queuedEvent.event.(type) {
	case events.CallRinging:
		s.setState(StateRinging)

	case events.CallAnswered:
		s.answered.Store(true)
		s.setState(StateConnected)
		s.setState(StateInConversation)
		s.statusSink.Publish(s.id, order.StatusInConversation)
		s.startRecording(ctx)
		s.armDeadAirWatch()

	case events.LineSpeechStarted:
		s.stopDeadAirWatch()

	case events.LineSpeechEnded:
		s.armDeadAirWatch()

	case events.CallBusy:
		s.setState(StateBusy)
		s.setErr(ErrNoHumanReachable)
		s.publishTerminal(order.StatusFailed)
		s.End(ctx)

	case events.CallFailed:
		span.SetStatus(codes.Error, event.Reason)
		s.fail(ctx, &carrierFailure{reason: event.Reason})

	case events.CallHungUp:
		s.publishTerminal(order.StatusEnded)
		s.End(ctx)

	case events.MenuDetected:
		s.handleMenu(ctx, event)

	case events.DigitsResult:
		s.handleDigitsResult(ctx, event)

	case events.LineTranscriptFinal:
		// Menu prompts and voicemail greetings are acted on through the
		// classification events that follow this one on the queue; running
		// them through the dialogue engine as speech would answer an IVR.
		if len(classify.ExtractMenuOptions(event.Transcript)) > 0 ||
			classify.IsVoicemailGreeting(event.Transcript) {
			return
		}
		s.handleDecision(ctx, s.engine.Decide(ctx, dialogue.Input{
			TransferActive: s.transferred.Load(),
			Event:          event,
		}))

	case events.VoicemailDetected:
		s.setState(StateVoicemail)
		s.handleDecision(ctx, s.engine.Decide(ctx, dialogue.Input{
			TransferActive: s.transferred.Load(),
			Event:          event,
		}))

	default:
		s.handleDecision(ctx, s.engine.Decide(ctx, dialogue.Input{
			TransferActive: s.transferred.Load(),
			Event:          queuedEvent.event,
		}))
	}
}

type carrierFailure struct{ reason string }

func (e *carrierFailure) Error() string { return "call failed: " + e.reason }

func (s *Session) handleMenu(ctx context.Context, event events.MenuDetected) {
	choice := menu.Select(event.Options)
	switch choice.Kind {
	case menu.ChoicePress:
		s.digitsRetried = false
		s.pressDigits(ctx, choice.Option.Digits)

	case menu.ChoiceVoicemail:
		// A menu whose only path is leaving a message is the voicemail
		// branch by another name.
		s.setState(StateVoicemail)
		s.handleDecision(ctx, s.engine.Decide(ctx, dialogue.Input{
			TransferActive: s.transferred.Load(),
			Event:          events.NewVoicemailDetected(event.Prompt),
		}))

	case menu.ChoiceWait:
		// Staying on the line is an explicit decision, not a fallthrough.
	}
}

func (s *Session) pressDigits(ctx context.Context, digits string) {
	s.lastDigits = digits
	err := s.carrierAction(ctx, "send_digits", func() error {
		return s.carrier.SendDigits(ctx, s.CallUUID(), digits)
	})
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.emit(events.NewAgentDigitsSent(digits))
}

func (s *Session) handleDigitsResult(ctx context.Context, event events.DigitsResult) {
	if event.OK {
		s.digitsRetried = false
		return
	}
	if !s.digitsRetried && s.lastDigits != "" {
		s.digitsRetried = true
		s.pressDigits(ctx, s.lastDigits)
		return
	}
	s.emit(events.NewAgentActionFailed("send_digits", "digit press rejected after retry"))
	s.fail(ctx, &carrierFailure{reason: "digit press rejected"})
}

func (s *Session) handleDecision(ctx context.Context, decision dialogue.Decision) {
	if decision.Silent || decision.Utterance == nil {
		return
	}
	if s.transferred.Load() {
		return
	}

	utterance := decision.Utterance
	s.speak(ctx, utterance)

	switch utterance.Action {
	case dialogue.ActionTransfer:
		s.transfer(ctx)

	case dialogue.ActionEndCall:
		status := order.StatusPlaced
		if decision.Step == dialogue.StepDone {
			// Voicemail close: nobody took the order.
			status = order.StatusVoicemailAbandoned
			s.setErr(ErrNoHumanReachable)
		}
		s.publishTerminal(status)
		s.hangUp(ctx)
		s.End(ctx)

	case dialogue.ActionPressDigits:
		if utterance.Digits != "" {
			s.digitsRetried = false
			s.pressDigits(ctx, utterance.Digits)
		}
	}
}

// speak plays one utterance into the call and blocks until the carrier
// acknowledges playback. Exactly one utterance is in flight at any time
// because this runs on the queue consumer.
func (s *Session) speak(ctx context.Context, utterance *dialogue.Utterance) {
	media := s.mediaSnapshot()
	if s.synthesizer == nil || media == nil {
		logger.Warn("No speech path for utterance", "session_id", s.id, "text", utterance.Text)
		return
	}

	markName := uuid.NewString()
	ack := make(chan struct{}, 1)
	s.inflightMu.Lock()
	s.inflightMark = markName
	s.inflightAck = ack
	s.inflightMu.Unlock()

	s.emit(events.NewAgentSpeakStarted(utterance.Text))

	err := s.carrierAction(ctx, "speak", func() error {
		return s.synthesizer.Synthesize(ctx, utterance.Text,
			synthesize.WithSpeechAudioCallback(func(chunk []byte) {
				if err := media.SendAudio(chunk); err != nil {
					logger.Warn("Failed to send audio to call", "session_id", s.id, "error", err)
				}
			}),
		)
	})
	if err == nil {
		if err := media.Mark(markName); err == nil {
			select {
			case <-ack:
			case <-time.After(speakAckTimeout):
				logger.Warn("Playback ack timed out", "session_id", s.id, "mark", markName)
			case <-s.runtime.closeCh:
			}
		}
	}

	s.inflightMu.Lock()
	s.inflightMark = ""
	s.inflightAck = nil
	s.inflightMu.Unlock()

	s.emit(events.NewAgentSpeakFinished(utterance.Text))
}

func (s *Session) startRecording(ctx context.Context) {
	if !s.recordCall || s.carrier == nil {
		return
	}

	var url string
	err := s.carrierAction(ctx, "start_recording", func() error {
		var recordErr error
		url, recordErr = s.carrier.StartRecording(ctx, s.CallUUID())
		return recordErr
	})
	if err != nil {
		// Recording is best effort; the call continues without it.
		return
	}

	s.mu.Lock()
	s.recordingURL = url
	s.mu.Unlock()
}

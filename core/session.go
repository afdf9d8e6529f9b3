// Package callsession runs one outbound order call end to end: dialing,
// signal classification, the dialogue protocol, menu navigation, the
// transfer hand-off, and teardown.
//
// One session is one concurrent unit. Every classified event goes through
// a single queue with a single consumer, so event handling is strictly
// ordered and at most one agent utterance is ever in flight.
package callsession

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/orderline-ai/orderline/core/audio"
	"github.com/orderline-ai/orderline/core/carrier"
	"github.com/orderline-ai/orderline/core/classify"
	"github.com/orderline-ai/orderline/core/dialogue"
	"github.com/orderline-ai/orderline/core/events"
	"github.com/orderline-ai/orderline/core/order"
	"github.com/orderline-ai/orderline/core/synthesize"
	"github.com/orderline-ai/orderline/core/transcribe"
)

const (
	defaultNoAnswerTimeout = 45 * time.Second
	defaultDeadAirTimeout  = 10 * time.Second
	speakAckTimeout        = 30 * time.Second
	carrierRetryBackoff    = 250 * time.Millisecond
)

type Session struct {
	id    string
	order order.Context

	engine     *dialogue.Engine
	classifier *classify.Classifier
	runtime    *sessionRuntime

	carrier     carrier.Controller
	transcriber transcribe.Client
	synthesizer synthesize.Client
	statusSink  order.Sink
	onEvent     func(events.Event)

	customerNumber  string
	dialogueOpts    []dialogue.EngineOption
	noAnswerTimeout time.Duration
	deadAirTimeout  time.Duration
	recordCall      bool

	baseContext context.Context

	mu           sync.RWMutex
	state        State
	callUUID     string
	media        carrier.MediaStream
	recordingURL string
	failure      error
	eventLog     []events.Event

	transferred atomic.Bool
	answered    atomic.Bool

	// dead-air watch over the quiet stretches between line speech.
	lastAudioAt  atomic.Int64
	silenceMu    sync.Mutex
	silenceTimer *time.Timer
	quietWindows int

	inflightMu   sync.Mutex
	inflightMark string
	inflightAck  chan struct{}

	// digit retry bookkeeping, touched only by the queue consumer.
	lastDigits    string
	digitsRetried bool

	closeOnce    sync.Once
	terminalOnce sync.Once
}

func New(orderContext order.Context, opts ...Option) *Session {
	s := &Session{
		id:              uuid.NewString()[:8],
		order:           orderContext.Snapshot(),
		runtime:         newSessionRuntime(),
		statusSink:      order.NopSink{},
		noAnswerTimeout: defaultNoAnswerTimeout,
		deadAirTimeout:  defaultDeadAirTimeout,
		baseContext:     context.Background(),
		state:           StateDialing,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = dialogue.NewEngine(s.order, s.dialogueOpts...)
	s.classifier = classify.New(func(event events.Event) {
		if !s.runtime.enqueue(event) {
			logger.Info("Dropped event for ended session",
				"session_id", s.id, "kind", string(event.Kind()))
		}
	})

	return s
}

func (s *Session) ID() string { return s.id }

// Signals is the ingress for carrier webhooks and transcription results.
func (s *Session) Signals() *classify.Classifier { return s.classifier }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// TransferActive reports the transfer gate. It only ever goes from false
// to true.
func (s *Session) TransferActive() bool { return s.transferred.Load() }

func (s *Session) CallUUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.callUUID
}

// SetCallUUID records the carrier's call identifier. Dialing stores the
// request identifier; the answer webhook replaces it with the live call's
// identifier, which every later control action is addressed at.
func (s *Session) SetCallUUID(callUUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if callUUID != "" {
		s.callUUID = callUUID
	}
}

func (s *Session) RecordingURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordingURL
}

// Err returns the terminal failure of the session, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// Dial starts the call. It returns once dialing is underway; progress
// arrives through Signals.
func (s *Session) Dial(ctx context.Context, from, to string) error {
	if s.carrier == nil {
		return errors.New("carrier controller is required")
	}
	if s.runtime.isClosed() {
		return ErrSessionEnded
	}

	s.baseContext = ctx
	if started := s.runtime.start(s.processQueuedEvent); started {
		go func() {
			select {
			case <-ctx.Done():
				s.End(context.WithoutCancel(ctx))
			case <-s.runtime.closeCh:
				// The session ended on its own; nothing left to watch.
			}
		}()
	}

	s.statusSink.Publish(s.id, order.StatusDialing)

	var callUUID string
	err := s.carrierAction(ctx, "place_call", func() error {
		var placeErr error
		callUUID, placeErr = s.carrier.PlaceCall(ctx, carrier.DialParams{
			From: from, To: to, SessionID: s.id,
		})
		return placeErr
	})
	if err != nil {
		s.fail(ctx, err)
		return err
	}
	s.SetCallUUID(callUUID)

	time.AfterFunc(s.noAnswerTimeout, func() {
		if !s.answered.Load() && !s.runtime.isClosed() {
			s.noAnswer(context.WithoutCancel(ctx))
		}
	})

	return nil
}

// Link attaches the call's media stream and starts transcription.
func (s *Session) Link(ctx context.Context, media carrier.MediaStream) error {
	s.mu.Lock()
	s.media = media
	s.mu.Unlock()

	if s.transcriber == nil {
		return nil
	}
	return s.transcriber.Transcribe(ctx,
		transcribe.WithEncodingInfo(audio.DefaultPhoneEncoding()),
		transcribe.WithSpeechStartedCallback(s.classifier.SpeechStarted),
		transcribe.WithSpeechEndedCallback(s.classifier.SpeechEnded),
		transcribe.WithInterimTranscriptionCallback(s.classifier.InterimTranscript),
		transcribe.WithTranscriptionCallback(s.classifier.FinalTranscript),
	)
}

// HandleAudio forwards one chunk of line audio to transcription.
func (s *Session) HandleAudio(chunk []byte) {
	s.lastAudioAt.Store(time.Now().UnixNano())
	if s.transcriber == nil {
		return
	}
	if err := s.transcriber.SendAudio(chunk); err != nil {
		logger.Warn("Failed to forward line audio", "session_id", s.id, "error", err)
	}
}

// HandleMarkPlayed acknowledges a playback checkpoint. Acks for anything
// but the in-flight utterance are stale and dropped.
func (s *Session) HandleMarkPlayed(name string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if name != "" && name == s.inflightMark && s.inflightAck != nil {
		select {
		case s.inflightAck <- struct{}{}:
		default:
		}
		return
	}
	logger.Info("Dropped late playback ack", "session_id", s.id, "mark", name)
}

// End tears the session down. It is idempotent: only the first call
// transitions to Ended and publishes a terminal status.
func (s *Session) End(ctx context.Context) {
	s.closeOnce.Do(func() {
		s.runtime.end()
		s.stopDeadAirWatch()
		s.setState(StateEnded)
		s.publishTerminal(order.StatusEnded)

		if s.transcriber != nil {
			if err := s.transcriber.Close(); err != nil {
				logger.Warn("Failed to close transcription", "session_id", s.id, "error", err)
			}
		}
		if s.synthesizer != nil {
			if err := s.synthesizer.Close(); err != nil {
				logger.Warn("Failed to close synthesis", "session_id", s.id, "error", err)
			}
		}
		if media := s.mediaSnapshot(); media != nil {
			if err := media.Close(); err != nil {
				logger.Warn("Failed to close media stream", "session_id", s.id, "error", err)
			}
		}
		_ = ctx
	})
}

// Wait blocks until the event consumer has drained and stopped.
func (s *Session) Wait() {
	s.runtime.waitUntilEnded()
}

func (s *Session) mediaSnapshot() carrier.MediaStream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.media
}

// setState applies one lifecycle transition. Transitions outside the
// lifecycle graph are protocol violations: logged and refused.
func (s *Session) setState(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == to {
		return false
	}
	if !canTransition(s.state, to) {
		logger.Warn("Refused lifecycle transition",
			"session_id", s.id,
			"from", string(s.state), "to", string(to),
			"error", ErrProtocolViolation)
		return false
	}
	s.state = to
	return true
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure == nil {
		s.failure = err
	}
}

// publishTerminal publishes at most one terminal status per session.
func (s *Session) publishTerminal(status order.Status) {
	s.terminalOnce.Do(func() {
		s.statusSink.Publish(s.id, status)
	})
}

func (s *Session) emit(event events.Event) {
	s.mu.Lock()
	s.eventLog = append(s.eventLog, event)
	s.mu.Unlock()

	if s.onEvent != nil {
		s.onEvent(event)
	}
}

// Events returns a copy of everything processed so far, in processing
// order.
func (s *Session) Events() []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]events.Event(nil), s.eventLog...)
}

// Abort cancels the call from outside the session: the line is hung up
// and the session torn down. Aborting an ended session does nothing.
func (s *Session) Abort(ctx context.Context) {
	if s.runtime.isClosed() {
		return
	}
	s.hangUp(ctx)
	s.End(ctx)
}

func (s *Session) fail(ctx context.Context, err error) {
	s.setErr(err)
	s.setState(StateFailed)
	s.publishTerminal(order.StatusFailed)
	s.End(ctx)
}

func (s *Session) noAnswer(ctx context.Context) {
	if !s.setState(StateNoAnswer) {
		return
	}
	s.setErr(ErrNoHumanReachable)
	s.publishTerminal(order.StatusFailed)
	s.hangUp(ctx)
	s.End(ctx)
}

func (s *Session) hangUp(ctx context.Context) {
	callUUID := s.CallUUID()
	if s.carrier == nil || callUUID == "" {
		return
	}
	_ = s.carrierAction(ctx, "hang_up", func() error {
		return s.carrier.HangUp(ctx, callUUID)
	})
}

// carrierAction runs one carrier control action, retrying once on
// failure. A transfer that is unavailable is not retried; retrying
// cannot make a customer leg appear.
func (s *Session) carrierAction(ctx context.Context, action string, f func() error) error {
	err := f()
	if err == nil {
		return nil
	}
	if errors.Is(err, carrier.ErrTransferUnavailable) {
		s.emit(events.NewAgentActionFailed(action, err.Error()))
		return err
	}

	logger.Warn("Carrier action failed, retrying once",
		"session_id", s.id, "action", action, "error", err)
	select {
	case <-time.After(carrierRetryBackoff):
	case <-s.runtime.closeCh:
		return err
	}
	if err := f(); err != nil {
		s.emit(events.NewAgentActionFailed(action, err.Error()))
		return err
	}
	return nil
}

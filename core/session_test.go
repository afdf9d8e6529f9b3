package callsession

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orderline-ai/orderline/core/carrier"
	"github.com/orderline-ai/orderline/core/events"
	"github.com/orderline-ai/orderline/core/order"
	"github.com/orderline-ai/orderline/core/synthesize"
	"github.com/orderline-ai/orderline/core/transcribe"
)

type fakeController struct {
	mu        sync.Mutex
	placed    int
	hangups   int
	digits    []string
	digitsAt  []time.Time
	bridged   []string
	placeErr  error
	digitsErr error
	bridgeErr error
}

func (f *fakeController) PlaceCall(context.Context, carrier.DialParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed++
	if f.placeErr != nil {
		return "", f.placeErr
	}
	return "call-uuid-1", nil
}

func (f *fakeController) SendDigits(_ context.Context, _ string, digits string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digits = append(f.digits, digits)
	f.digitsAt = append(f.digitsAt, time.Now())
	return f.digitsErr
}

func (f *fakeController) Bridge(_ context.Context, _ string, customerNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bridgeErr != nil {
		return f.bridgeErr
	}
	f.bridged = append(f.bridged, customerNumber)
	return nil
}

func (f *fakeController) HangUp(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hangups++
	return nil
}

func (f *fakeController) StartRecording(context.Context, string) (string, error) {
	return "https://recordings.example/call-uuid-1", nil
}

func (f *fakeController) sentDigits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.digits...)
}

func (f *fakeController) digitTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.digitsAt...)
}

func (f *fakeController) hangupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hangups
}

func (f *fakeController) bridgedNumbers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bridged...)
}

type fakeMedia struct {
	mu     sync.Mutex
	sent   int
	marks  []string
	onMark func(string)
	closed bool
}

func (f *fakeMedia) SendAudio([]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

func (f *fakeMedia) Mark(name string) error {
	f.mu.Lock()
	f.marks = append(f.marks, name)
	onMark := f.onMark
	f.mu.Unlock()
	if onMark != nil {
		onMark(name)
	}
	return nil
}

func (f *fakeMedia) ClearAudio() error { return nil }

func (f *fakeMedia) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeSynthesizer struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string, opts ...synthesize.Option) error {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	options := synthesize.Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.SpeechAudioCallback != nil {
		options.SpeechAudioCallback([]byte{0xFF, 0xFF})
	}
	if options.SpeechEndedCallback != nil {
		options.SpeechEndedCallback()
	}
	return nil
}

func (f *fakeSynthesizer) Close() error { return nil }

func (f *fakeSynthesizer) spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(context.Context, ...transcribe.Option) error { return nil }
func (fakeTranscriber) SendAudio([]byte) error                                 { return nil }
func (fakeTranscriber) Close() error                                           { return nil }

type statusRecorder struct {
	mu       sync.Mutex
	statuses []order.Status
}

func (r *statusRecorder) Publish(_ string, status order.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *statusRecorder) all() []order.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]order.Status(nil), r.statuses...)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func waitFor(t *testing.T, description string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}

type sessionFixture struct {
	session     *Session
	controller  *fakeController
	media       *fakeMedia
	synthesizer *fakeSynthesizer
	statuses    *statusRecorder
	recorded    *eventRecorder
}

func newSessionFixture(t *testing.T, opts ...Option) *sessionFixture {
	t.Helper()

	fixture := &sessionFixture{
		controller:  &fakeController{},
		media:       &fakeMedia{},
		synthesizer: &fakeSynthesizer{},
		statuses:    &statusRecorder{},
		recorded:    &eventRecorder{},
	}

	orderContext := order.Context{
		Business:        "Little Star Pizza",
		Items:           []string{"one large pepperoni pizza"},
		Type:            order.TypeDelivery,
		DeliveryAddress: "451 Valencia Street",
		PaymentMethod:   "card on arrival",
		CustomerName:    "Dana",
	}

	sessionOpts := append([]Option{
		WithCarrier(fixture.controller),
		WithSynthesizer(fixture.synthesizer),
		WithTranscriber(fakeTranscriber{}),
		WithStatusSink(fixture.statuses),
		WithEventCallback(fixture.recorded.record),
		WithCustomerNumber("+14155550100"),
	}, opts...)
	fixture.session = New(orderContext, sessionOpts...)
	fixture.media.onMark = fixture.session.HandleMarkPlayed

	if err := fixture.session.Dial(context.Background(), "+14155550199", "+14155550123"); err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if err := fixture.session.Link(context.Background(), fixture.media); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	t.Cleanup(func() { fixture.session.End(context.Background()) })

	return fixture
}

func (f *sessionFixture) answer() {
	f.session.Signals().Ringing()
	f.session.Signals().Answered()
}

func TestSessionHappyPathPlacesOrder(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	for _, heard := range []string{
		"Thanks for calling Little Star, how can I help you?",
		"Sure, what would you like?",
		"What size?",
		"Your total comes to twenty three fifty.",
		"Cash or card?",
		"Can I get a name for the order?",
		"What's the address?",
		"It'll be ready in about 40 minutes.",
	} {
		session.Signals().FinalTranscript(heard)
	}

	waitFor(t, "session to end", func() bool { return session.State() == StateEnded })

	spoken := fixture.synthesizer.spoken()
	if len(spoken) != 8 {
		t.Fatalf("spoken utterances = %d, want 8: %q", len(spoken), spoken)
	}
	if !strings.Contains(spoken[0], "delivery order") {
		t.Fatalf("first utterance = %q, want the greeting", spoken[0])
	}

	if got := fixture.controller.hangupCount(); got != 1 {
		t.Fatalf("hangups = %d, want 1", got)
	}

	statuses := fixture.statuses.all()
	want := []order.Status{order.StatusDialing, order.StatusInConversation, order.StatusPlaced}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", statuses, want)
		}
	}
}

func TestSessionVoicemailEndsWithoutOrderContent(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	session.Signals().FinalTranscript("You've reached Little Star. Please leave a message after the beep.")

	waitFor(t, "session to end", func() bool { return session.State() == StateEnded })

	spoken := fixture.synthesizer.spoken()
	if len(spoken) != 1 {
		t.Fatalf("spoken utterances = %d, want 1: %q", len(spoken), spoken)
	}
	lowered := strings.ToLower(spoken[0])
	for _, banned := range []string{"pizza", "pepperoni", "order", "card", "valencia"} {
		if strings.Contains(lowered, banned) {
			t.Fatalf("voicemail close mentions %q: %q", banned, spoken[0])
		}
	}

	statuses := fixture.statuses.all()
	if statuses[len(statuses)-1] != order.StatusVoicemailAbandoned {
		t.Fatalf("terminal status = %v, want %v", statuses[len(statuses)-1], order.StatusVoicemailAbandoned)
	}
	if !errors.Is(session.Err(), ErrNoHumanReachable) {
		t.Fatalf("session error = %v, want %v", session.Err(), ErrNoHumanReachable)
	}
}

func TestSessionTransfersAndNeverSpeaksAgain(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	session.Signals().FinalTranscript("Can I get the card number to run the payment?")
	waitFor(t, "transfer gate", func() bool { return session.TransferActive() })
	waitFor(t, "bridge", func() bool { return len(fixture.controller.bridgedNumbers()) == 1 })

	if got := fixture.controller.bridgedNumbers()[0]; got != "+14155550100" {
		t.Fatalf("bridged number = %q", got)
	}
	spokenBefore := len(fixture.synthesizer.spoken())

	// Everything after the gate is silence from the agent.
	session.Signals().FinalTranscript("Hello? Are you there?")
	session.Signals().FinalTranscript("What would you like?")
	time.Sleep(50 * time.Millisecond)

	if got := len(fixture.synthesizer.spoken()); got != spokenBefore {
		t.Fatalf("agent spoke after transfer: %q", fixture.synthesizer.spoken()[spokenBefore:])
	}
	if session.State() != StateTransferred {
		t.Fatalf("state = %v, want %v", session.State(), StateTransferred)
	}

	statuses := fixture.statuses.all()
	if statuses[len(statuses)-1] != order.StatusTransferred {
		t.Fatalf("terminal status = %v, want %v", statuses[len(statuses)-1], order.StatusTransferred)
	}
}

func TestSessionNavigatesMenuTowardOrdering(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	session.Signals().FinalTranscript(
		"press 1 to place an order, press 2 for store hours, press 0 to speak to an operator")

	waitFor(t, "digits sent", func() bool { return len(fixture.controller.sentDigits()) == 1 })
	if got := fixture.controller.sentDigits()[0]; got != "1" {
		t.Fatalf("sent digits = %q, want %q", got, "1")
	}
	if got := len(fixture.synthesizer.spoken()); got != 0 {
		t.Fatalf("agent spoke into an IVR menu: %q", fixture.synthesizer.spoken())
	}
}

func TestSessionRetriesRejectedDigitsOnce(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	session.Signals().FinalTranscript("press 1 to place an order, press 2 for store hours")
	waitFor(t, "first press", func() bool { return len(fixture.controller.sentDigits()) == 1 })

	session.Signals().DigitsResult("1", false)
	waitFor(t, "retry press", func() bool { return len(fixture.controller.sentDigits()) == 2 })

	session.Signals().DigitsResult("1", false)
	waitFor(t, "session failure", func() bool { return session.State() == StateEnded })

	statuses := fixture.statuses.all()
	if statuses[len(statuses)-1] != order.StatusFailed {
		t.Fatalf("terminal status = %v, want %v", statuses[len(statuses)-1], order.StatusFailed)
	}
}

func TestSessionBusySignalFailsTerminally(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	session.Signals().Ringing()
	session.Signals().Busy()

	waitFor(t, "session to end", func() bool { return session.State() == StateEnded })
	if !errors.Is(session.Err(), ErrNoHumanReachable) {
		t.Fatalf("session error = %v, want %v", session.Err(), ErrNoHumanReachable)
	}

	statuses := fixture.statuses.all()
	if statuses[len(statuses)-1] != order.StatusFailed {
		t.Fatalf("terminal status = %v, want %v", statuses[len(statuses)-1], order.StatusFailed)
	}
}

func TestSessionEndIsIdempotent(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	session.End(context.Background())
	session.End(context.Background())
	session.Wait()

	if session.State() != StateEnded {
		t.Fatalf("state = %v, want %v", session.State(), StateEnded)
	}

	terminal := 0
	for _, status := range fixture.statuses.all() {
		switch status {
		case order.StatusEnded, order.StatusPlaced, order.StatusFailed,
			order.StatusVoicemailAbandoned, order.StatusTransferred:
			terminal++
		}
	}
	if terminal != 1 {
		t.Fatalf("terminal status published %d times, want once: %v", terminal, fixture.statuses.all())
	}
}

func TestSessionDropsLatePlaybackAck(t *testing.T) {
	fixture := newSessionFixture(t)

	// No utterance in flight; a stale ack must be ignored without side
	// effects.
	fixture.session.HandleMarkPlayed("stale-mark")

	if got := len(fixture.synthesizer.spoken()); got != 0 {
		t.Fatalf("spoken = %d, want 0", got)
	}
}

func TestSessionRecordsWhenEnabled(t *testing.T) {
	fixture := newSessionFixture(t, WithRecording())
	session := fixture.session

	fixture.answer()
	waitFor(t, "recording url", func() bool { return session.RecordingURL() != "" })

	if got := session.RecordingURL(); !strings.Contains(got, "recordings.example") {
		t.Fatalf("recording url = %q", got)
	}
}

func TestSessionEventOrderingIsPreserved(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	fixture.answer()
	session.Signals().FinalTranscript("Thanks for calling, how can I help?")

	waitFor(t, "utterance processed", func() bool {
		kinds := fixture.recorded.kinds()
		for _, kind := range kinds {
			if kind == events.KindAgentSpeakFinished {
				return true
			}
		}
		return false
	})

	kinds := fixture.recorded.kinds()
	indexOf := func(kind events.Kind) int {
		for i, k := range kinds {
			if k == kind {
				return i
			}
		}
		return -1
	}

	ringing := indexOf(events.KindCallRinging)
	answered := indexOf(events.KindCallAnswered)
	transcript := indexOf(events.KindLineTranscriptFinal)
	started := indexOf(events.KindAgentSpeakStarted)
	finished := indexOf(events.KindAgentSpeakFinished)

	if !(ringing < answered && answered < transcript && transcript < started && started < finished) {
		t.Fatalf("event order violated: %v", kinds)
	}
}

func TestSessionAbortHangsUpAndEnds(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	session.Abort(context.Background())
	session.Wait()

	if session.State() != StateEnded {
		t.Fatalf("state = %q, want ended", session.State())
	}
	if got := fixture.controller.hangupCount(); got != 1 {
		t.Fatalf("hangups = %d, want 1", got)
	}

	// A second abort on the ended session must do nothing.
	session.Abort(context.Background())
	if got := fixture.controller.hangupCount(); got != 1 {
		t.Fatalf("hangups after repeat abort = %d, want 1", got)
	}
}

func TestSessionEventLogIsACopy(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session

	fixture.answer()
	waitFor(t, "events logged", func() bool { return len(session.Events()) >= 2 })

	log := session.Events()
	log[0] = events.NewCallHungUp()
	if session.Events()[0].Kind() == events.KindCallHungUp {
		t.Fatal("mutating the returned log reached the session")
	}
}

func TestSessionContinuesWhenTransferUnavailable(t *testing.T) {
	fixture := newSessionFixture(t, WithCustomerNumber(""))
	session := fixture.session

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	session.Signals().FinalTranscript("Can I get the card number to run the payment?")
	waitFor(t, "bridge failure event", func() bool {
		for _, kind := range fixture.recorded.kinds() {
			if kind == events.KindAgentActionFailed {
				return true
			}
		}
		return false
	})

	if session.TransferActive() {
		t.Fatal("transfer gate set without a customer leg to bridge")
	}
	if session.State() != StateInConversation {
		t.Fatalf("state = %q, want %q", session.State(), StateInConversation)
	}
	if got := len(fixture.controller.bridgedNumbers()); got != 0 {
		t.Fatalf("bridged legs = %d, want 0", got)
	}
	if got := fixture.controller.hangupCount(); got != 0 {
		t.Fatalf("hangups = %d, want 0", got)
	}
	for _, status := range fixture.statuses.all() {
		if status == order.StatusFailed {
			t.Fatalf("order failed over an unavailable transfer: %v", fixture.statuses.all())
		}
	}

	// The agent keeps conducting the call.
	spokenBefore := len(fixture.synthesizer.spoken())
	session.Signals().FinalTranscript("Sure, what would you like?")
	waitFor(t, "agent to keep speaking", func() bool {
		return len(fixture.synthesizer.spoken()) > spokenBefore
	})
}

func TestSessionReportsSilenceThenHoldMusic(t *testing.T) {
	fixture := newSessionFixture(t, WithDeadAirTimeout(15*time.Millisecond))
	session := fixture.session

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	session.Signals().SpeechStarted()
	session.Signals().SpeechEnded()

	waitFor(t, "silence report", func() bool {
		for _, kind := range fixture.recorded.kinds() {
			if kind == events.KindLineSilence {
				return true
			}
		}
		return false
	})

	// Quiet stretches with audio still flowing classify as hold music
	// once they persist past a single window.
	waitFor(t, "hold music report", func() bool {
		session.HandleAudio(make([]byte, 160))
		for _, kind := range fixture.recorded.kinds() {
			if kind == events.KindLineHoldMusic {
				return true
			}
		}
		return false
	})

	if got := len(fixture.synthesizer.spoken()); got != 0 {
		t.Fatalf("agent spoke into dead air: %q", fixture.synthesizer.spoken())
	}
}

func TestSessionDialWatchdogExitsWithSession(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 10; i++ {
		session := New(order.Context{
			Items:        []string{"one large pepperoni pizza"},
			CustomerName: "Dana",
		}, WithCarrier(&fakeController{}))

		// A non-cancellable context is how the server dials; the watchdog
		// must still exit once the session ends.
		if err := session.Dial(context.WithoutCancel(context.Background()), "+14155550199", "+14155550123"); err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		session.End(context.Background())
		session.Wait()
	}

	waitFor(t, "watchdog goroutines to exit", func() bool {
		return runtime.NumGoroutine() <= before+2
	})
}

func TestSessionBacksOffBeforeRetryingCarrierAction(t *testing.T) {
	fixture := newSessionFixture(t)
	session := fixture.session
	fixture.controller.digitsErr = errors.New("congestion")

	fixture.answer()
	waitFor(t, "conversation state", func() bool { return session.State() == StateInConversation })

	session.Signals().FinalTranscript("press 1 to place an order, press 2 for store hours")
	waitFor(t, "both digit attempts", func() bool { return len(fixture.controller.sentDigits()) == 2 })

	times := fixture.controller.digitTimes()
	if gap := times[1].Sub(times[0]); gap < carrierRetryBackoff {
		t.Fatalf("retry gap = %v, want at least %v", gap, carrierRetryBackoff)
	}
}

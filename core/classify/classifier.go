// Package classify turns raw transcription callbacks and carrier progress
// signals into the typed call event stream.
//
// Energy and voice-activity decisions (speech vs silence vs hold music)
// belong to the transcription and carrier capabilities; this package only
// forwards them. What it does own is phrase-pattern classification of
// recognized text: IVR menu prompts and voicemail greetings are recognized
// here, from final transcripts only.
package classify

import (
	"sync/atomic"

	"github.com/orderline-ai/orderline/core/events"
)

// Emitter receives classified events in emission order.
type Emitter func(events.Event)

// Classifier produces the session's event stream. One classifier serves
// exactly one call; it cannot be restarted mid-call.
type Classifier struct {
	emit   Emitter
	closed atomic.Bool
}

func New(emit Emitter) *Classifier {
	if emit == nil {
		emit = func(events.Event) {}
	}
	return &Classifier{emit: emit}
}

func (c *Classifier) send(event events.Event) {
	if c.closed.Load() {
		return
	}
	c.emit(event)
}

// Ringing forwards carrier ringback.
func (c *Classifier) Ringing() { c.send(events.NewCallRinging()) }

// Answered forwards the carrier answer signal.
func (c *Classifier) Answered() { c.send(events.NewCallAnswered()) }

// Busy forwards a busy signal.
func (c *Classifier) Busy() { c.send(events.NewCallBusy()) }

// Failed forwards a carrier-level call failure.
func (c *Classifier) Failed(reason string) { c.send(events.NewCallFailed(reason)) }

// HungUp forwards the line going dead and seals the classifier: audio
// arriving after a hangup is stale and never becomes an event.
func (c *Classifier) HungUp() {
	if c.closed.CompareAndSwap(false, true) {
		c.emit(events.NewCallHungUp())
	}
}

// Silence forwards a sustained no-speech window reported by the
// voice-activity capability.
func (c *Classifier) Silence() { c.send(events.NewLineSilence()) }

// HoldMusic forwards a hold-music report from the audio capability.
func (c *Classifier) HoldMusic() { c.send(events.NewLineHoldMusic()) }

// SpeechStarted forwards start of counterparty speech.
func (c *Classifier) SpeechStarted() { c.send(events.NewLineSpeechStarted()) }

// SpeechEnded forwards end of counterparty speech.
func (c *Classifier) SpeechEnded() { c.send(events.NewLineSpeechEnded()) }

// InterimTranscript forwards a mutable interim transcript snapshot.
// Interim text is never pattern-classified; committing a menu or
// voicemail branch waits for final text.
func (c *Classifier) InterimTranscript(transcript string) {
	if transcript == "" {
		return
	}
	c.send(events.NewLineTranscriptInterim(transcript))
}

// FinalTranscript forwards the final recognized text and, when the text
// matches an IVR menu or voicemail greeting pattern, the classification
// on top of it. The transcript event always comes first; classifications
// never replace it.
func (c *Classifier) FinalTranscript(transcript string) {
	if transcript == "" {
		return
	}
	c.send(events.NewLineTranscriptFinal(transcript))

	if options := ExtractMenuOptions(transcript); len(options) > 0 {
		c.send(events.NewMenuDetected(transcript, options))
		return
	}
	if IsVoicemailGreeting(transcript) {
		c.send(events.NewVoicemailDetected(transcript))
	}
}

// DigitsResult forwards the carrier's acknowledgement of a digit press.
func (c *Classifier) DigitsResult(digits string, ok bool) {
	c.send(events.NewDigitsResult(digits, ok))
}

package events

import "github.com/orderline-ai/orderline/core/menu"

const (
	// KindLineSilence identifies a sustained no-speech window.
	KindLineSilence Kind = "line_audio.silence"
	// KindLineHoldMusic identifies hold music on the line.
	KindLineHoldMusic Kind = "line_audio.hold_music"
	// KindLineSpeechStarted identifies start of counterparty speech.
	KindLineSpeechStarted Kind = "line_audio.speech_started"
	// KindLineSpeechEnded identifies end of counterparty speech.
	KindLineSpeechEnded Kind = "line_audio.speech_ended"
	// KindLineTranscriptInterim identifies a mutable interim transcript snapshot.
	KindLineTranscriptInterim Kind = "line_transcript.interim"
	// KindLineTranscriptFinal identifies the final transcript for an utterance.
	KindLineTranscriptFinal Kind = "line_transcript.final"
	// KindMenuDetected identifies a recognized IVR menu prompt.
	KindMenuDetected Kind = "line_signal.menu_detected"
	// KindVoicemailDetected identifies a recognized voicemail greeting.
	KindVoicemailDetected Kind = "line_signal.voicemail_detected"
	// KindDigitsResult identifies the carrier's result for a digit press.
	KindDigitsResult Kind = "line_signal.dtmf_result"
)

// LineSilence marks a sustained no-speech window on the line.
type LineSilence struct{ Base }

func NewLineSilence() LineSilence {
	return LineSilence{Base: NewBase(KindLineSilence)}
}

// LineHoldMusic marks hold music on the line.
type LineHoldMusic struct{ Base }

func NewLineHoldMusic() LineHoldMusic {
	return LineHoldMusic{Base: NewBase(KindLineHoldMusic)}
}

// LineSpeechStarted marks counterparty speech activity starting.
type LineSpeechStarted struct{ Base }

func NewLineSpeechStarted() LineSpeechStarted {
	return LineSpeechStarted{Base: NewBase(KindLineSpeechStarted)}
}

// LineSpeechEnded marks counterparty speech activity ending.
type LineSpeechEnded struct{ Base }

func NewLineSpeechEnded() LineSpeechEnded {
	return LineSpeechEnded{Base: NewBase(KindLineSpeechEnded)}
}

// LineTranscriptInterim carries a mutable interim transcript snapshot.
// Interim text may trigger early interruption handling but never commits
// a protocol step.
type LineTranscriptInterim struct {
	Base
	Transcript string
}

func NewLineTranscriptInterim(transcript string) LineTranscriptInterim {
	return LineTranscriptInterim{Base: NewBase(KindLineTranscriptInterim), Transcript: transcript}
}

// LineTranscriptFinal carries the final recognized text for an utterance.
type LineTranscriptFinal struct {
	Base
	Transcript string
}

func NewLineTranscriptFinal(transcript string) LineTranscriptFinal {
	return LineTranscriptFinal{Base: NewBase(KindLineTranscriptFinal), Transcript: transcript}
}

// MenuDetected carries the options extracted from a recognized IVR menu
// prompt, in announcement order.
type MenuDetected struct {
	Base
	Prompt  string
	Options []menu.Option
}

func NewMenuDetected(prompt string, options []menu.Option) MenuDetected {
	return MenuDetected{Base: NewBase(KindMenuDetected), Prompt: prompt, Options: options}
}

// VoicemailDetected carries a recognized voicemail greeting.
type VoicemailDetected struct {
	Base
	Greeting string
}

func NewVoicemailDetected(greeting string) VoicemailDetected {
	return VoicemailDetected{Base: NewBase(KindVoicemailDetected), Greeting: greeting}
}

// DigitsResult carries the carrier's acknowledgement for a digit press.
type DigitsResult struct {
	Base
	Digits string
	OK     bool
}

func NewDigitsResult(digits string, ok bool) DigitsResult {
	return DigitsResult{Base: NewBase(KindDigitsResult), Digits: digits, OK: ok}
}

// Package transcribe defines the contract for streaming speech-to-text
// over the call's line audio.
package transcribe

import (
	"context"

	"github.com/orderline-ai/orderline/core/audio"
)

// Client is a streaming transcription session over one call's audio.
type Client interface {
	// Transcribe opens the stream and starts delivering callbacks. It
	// returns once the stream is connected; delivery continues until the
	// context is cancelled or Close is called.
	Transcribe(ctx context.Context, opts ...Option) error
	// SendAudio forwards one chunk of line audio to the recognizer.
	SendAudio(audio []byte) error
	// Close flushes and tears down the stream.
	Close() error
}

type Options struct {
	InterimTranscriptionCallback func(transcript string)
	TranscriptionCallback        func(transcript string)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	EncodingInfo audio.EncodingInfo
}

type Option func(*Options)

func WithTranscriptionCallback(callback func(transcript string)) Option {
	return func(o *Options) {
		o.TranscriptionCallback = callback
	}
}

func WithInterimTranscriptionCallback(callback func(transcript string)) Option {
	return func(o *Options) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) Option {
	return func(o *Options) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) Option {
	return func(o *Options) {
		o.SpeechEndedCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) Option {
	return func(o *Options) {
		o.EncodingInfo = encodingInfo
	}
}

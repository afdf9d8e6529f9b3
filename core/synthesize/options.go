// Package synthesize defines the contract for turning one utterance of
// agent text into line-ready audio.
package synthesize

import (
	"context"

	"github.com/orderline-ai/orderline/core/audio"
)

// Client generates speech audio for one utterance at a time. Calls to
// Synthesize never overlap; the session serializes them.
type Client interface {
	// Synthesize streams the spoken audio for text through the configured
	// audio callback and returns once all audio has been delivered.
	Synthesize(ctx context.Context, text string, opts ...Option) error
	// Close releases the underlying connection.
	Close() error
}

type Options struct {
	// SpeechAudioCallback receives raw audio chunks in line encoding as
	// they are generated.
	SpeechAudioCallback func(audio []byte)
	// SpeechEndedCallback fires once, after the last audio chunk for the
	// utterance has been delivered.
	SpeechEndedCallback func()

	EncodingInfo audio.EncodingInfo
}

type Option func(*Options)

func WithSpeechAudioCallback(callback func([]byte)) Option {
	return func(o *Options) { o.SpeechAudioCallback = callback }
}

func WithSpeechEndedCallback(callback func()) Option {
	return func(o *Options) { o.SpeechEndedCallback = callback }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) Option {
	return func(o *Options) {
		if encodingInfo.SampleRate == 0 || encodingInfo.Encoding == "" {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}

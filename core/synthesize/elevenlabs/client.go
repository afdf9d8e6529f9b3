// Package elevenlabs generates speech through ElevenLabs' streaming
// text-to-speech websocket, in telephony mu-law output.
package elevenlabs

import (
	"fmt"
	"os"
)

const defaultModel = "eleven_turbo_v2_5"

type TextToSpeechClient struct {
	apiKey  string
	voiceID string
	model   string
}

type ClientOption func(*TextToSpeechClient)

// WithModel overrides the synthesis model.
func WithModel(model string) ClientOption {
	return func(c *TextToSpeechClient) { c.model = model }
}

func NewTextToSpeechClient(voiceID string, opts ...ClientOption) (*TextToSpeechClient, error) {
	apiKey, ok := os.LookupEnv("ELEVENLABS_API_KEY")
	if !ok {
		return nil, fmt.Errorf("elevenlabs api key not found")
	}
	if voiceID == "" {
		return nil, fmt.Errorf("voice id is required")
	}

	client := &TextToSpeechClient{apiKey: apiKey, voiceID: voiceID, model: defaultModel}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *TextToSpeechClient) Close() error { return nil }

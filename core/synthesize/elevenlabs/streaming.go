package elevenlabs

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/orderline-ai/orderline/core/audio"
	"github.com/orderline-ai/orderline/core/synthesize"
)

type initialMessage struct {
	Text          string        `json:"text"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type textMessage struct {
	Text                 string `json:"text"`
	TryTriggerGeneration bool   `json:"try_trigger_generation,omitempty"`
}

type audioMessage struct {
	Audio   string `json:"audio"`
	IsFinal *bool  `json:"isFinal"`
	Error   string `json:"error"`
}

// Synthesize streams one utterance through a dedicated stream-input
// websocket. The connection lives for exactly one utterance; closing it
// after the final chunk is what flushes ElevenLabs' buffer.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string, opts ...synthesize.Option) error {
	options := &synthesize.Options{EncodingInfo: audio.DefaultPhoneEncoding()}
	for _, opt := range opts {
		opt(options)
	}

	outputFormat, err := convertOutputFormat(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := c.connectWebsocket(ctx, outputFormat)
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(initialMessage{
		Text:          " ",
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.8},
	}); err != nil {
		return fmt.Errorf("failed to initialize synthesis stream: %w", err)
	}
	if err := conn.WriteJSON(textMessage{Text: text + " ", TryTriggerGeneration: true}); err != nil {
		return fmt.Errorf("failed to send text for synthesis: %w", err)
	}
	// An empty text message marks end of input.
	if err := conn.WriteJSON(textMessage{Text: ""}); err != nil {
		return fmt.Errorf("failed to end synthesis input: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var msg audioMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			return fmt.Errorf("failed to read synthesis message: %w", err)
		}
		if msg.Error != "" {
			return fmt.Errorf("synthesis failed: %s", msg.Error)
		}

		if msg.Audio != "" && options.SpeechAudioCallback != nil {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				slog.Error("Failed to decode synthesis audio chunk", "error", err)
				continue
			}
			options.SpeechAudioCallback(chunk)
		}
		if msg.IsFinal != nil && *msg.IsFinal {
			break
		}
	}

	if options.SpeechEndedCallback != nil {
		options.SpeechEndedCallback()
	}
	return nil
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context, outputFormat string) (*websocket.Conn, error) {
	urlValues := url.Values{}
	urlValues.Set("model_id", c.model)
	urlValues.Set("output_format", outputFormat)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx,
		(&url.URL{
			Scheme:   "wss",
			Host:     "api.elevenlabs.io",
			Path:     "/v1/text-to-speech/" + c.voiceID + "/stream-input",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"xi-api-key": {c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to elevenlabs: %w", err)
	}
	return conn, nil
}

func convertOutputFormat(encoding audio.EncodingInfo) (string, error) {
	switch encoding.Encoding {
	case "mulaw":
		if encoding.SampleRate != 8000 {
			return "", fmt.Errorf("unsupported sample rate for mulaw encoding")
		}
		return "ulaw_8000", nil
	case "linear16":
		switch encoding.SampleRate {
		case 16000:
			return "pcm_16000", nil
		case 22050:
			return "pcm_22050", nil
		case 24000:
			return "pcm_24000", nil
		}
		return "", fmt.Errorf("unsupported sample rate for linear16 encoding")
	}
	return "", fmt.Errorf("unsupported encoding")
}

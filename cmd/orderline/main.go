// Command orderline runs the order server: the HTTP API, the carrier
// webhooks, and the media websockets for live calls.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/orderline-ai/orderline/core/carrier/plivo"
	"github.com/orderline-ai/orderline/core/dialogue"
	"github.com/orderline-ai/orderline/core/order"
	"github.com/orderline-ai/orderline/core/respond"
	"github.com/orderline-ai/orderline/core/respond/gemini"
	"github.com/orderline-ai/orderline/core/synthesize"
	"github.com/orderline-ai/orderline/core/synthesize/elevenlabs"
	"github.com/orderline-ai/orderline/core/transcribe"
	"github.com/orderline-ai/orderline/core/transcribe/deepgram"
	"github.com/orderline-ai/orderline/lookup"
	"github.com/orderline-ai/orderline/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Failed to start", "error", err)
		os.Exit(1)
	}
}

func run() error {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	fromNumber := os.Getenv("FROM_NUMBER")
	if fromNumber == "" {
		return fmt.Errorf("FROM_NUMBER is required")
	}

	controller, err := plivo.NewController(baseURL)
	if err != nil {
		return fmt.Errorf("failed to set up carrier: %w", err)
	}

	opts := []server.Option{
		server.WithBaseURL(baseURL),
		server.WithFromNumber(fromNumber),
		server.WithCarrier(controller),
	}

	if os.Getenv("DEEPGRAM_API_KEY") != "" {
		opts = append(opts, server.WithTranscriberFactory(func() transcribe.Client {
			return &deepgram.TranscriptionClient{}
		}))
	} else {
		slog.Warn("DEEPGRAM_API_KEY not set, calls will run without transcription")
	}

	if voiceID := os.Getenv("ELEVENLABS_VOICE_ID"); voiceID != "" {
		opts = append(opts, server.WithSynthesizerFactory(func() (synthesize.Client, error) {
			return elevenlabs.NewTextToSpeechClient(voiceID)
		}))
	} else {
		slog.Warn("ELEVENLABS_VOICE_ID not set, calls will run without speech")
	}

	if os.Getenv("GOOGLE_PLACES_API_KEY") != "" {
		places, err := lookup.NewClient()
		if err != nil {
			return fmt.Errorf("failed to set up restaurant lookup: %w", err)
		}
		opts = append(opts, server.WithLookup(places))
	}

	if os.Getenv("GOOGLE_API_KEY") != "" {
		llm, err := gemini.NewClient()
		if err != nil {
			return fmt.Errorf("failed to set up response provider: %w", err)
		}
		opts = append(opts,
			server.WithResponder(llm),
			server.WithDialogueOptions(
				dialogue.WithIntentClassifier(respond.NewIntentClassifier(llm)),
			),
		)
	}

	if os.Getenv("RECORD_CALLS") == "true" {
		opts = append(opts, server.WithRecording())
	}

	srv := server.New(order.NewStore(), opts...)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("Order server listening", "port", port)
	return http.ListenAndServe(":"+port, srv.Handler())
}

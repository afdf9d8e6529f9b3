package deepgram

import (
	"testing"

	"github.com/orderline-ai/orderline/core/audio"
)

func TestConvertEncodingPhoneDefault(t *testing.T) {
	encoding, err := convertEncoding(audio.DefaultPhoneEncoding())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoding.Format != encodingMulaw {
		t.Fatalf("format = %q, want %q", encoding.Format, encodingMulaw)
	}
	if encoding.SampleRate != 8000 {
		t.Fatalf("sample rate = %d, want 8000", encoding.SampleRate)
	}
}

func TestConvertEncodingRejectsWidebandMulaw(t *testing.T) {
	_, err := convertEncoding(audio.EncodingInfo{Encoding: "mulaw", SampleRate: 16000, Channels: 1})
	if err == nil {
		t.Fatal("expected an error for 16kHz mulaw")
	}
}

func TestConvertEncodingRejectsUnknownFormat(t *testing.T) {
	_, err := convertEncoding(audio.EncodingInfo{Encoding: "opus", SampleRate: 48000, Channels: 1})
	if err == nil {
		t.Fatal("expected an error for an unsupported encoding")
	}
}

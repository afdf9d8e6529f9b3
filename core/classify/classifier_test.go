package classify

import (
	"testing"

	"github.com/orderline-ai/orderline/core/events"
)

func collect(t *testing.T) (*Classifier, *[]events.Event) {
	t.Helper()
	var log []events.Event
	classifier := New(func(event events.Event) { log = append(log, event) })
	return classifier, &log
}

func TestFinalTranscriptEmitsTranscriptThenMenu(t *testing.T) {
	classifier, log := collect(t)

	classifier.FinalTranscript("press 1 to place an order, press 2 for store hours, press 0 to speak to an operator")

	if len(*log) != 2 {
		t.Fatalf("expected transcript + menu events, got %d", len(*log))
	}
	if (*log)[0].Kind() != events.KindLineTranscriptFinal {
		t.Fatalf("expected transcript first, got %q", (*log)[0].Kind())
	}
	detected, ok := (*log)[1].(events.MenuDetected)
	if !ok {
		t.Fatalf("expected MenuDetected, got %T", (*log)[1])
	}
	if len(detected.Options) != 3 {
		t.Fatalf("expected 3 options, got %d: %+v", len(detected.Options), detected.Options)
	}
	if detected.Options[0].Digits != "1" || detected.Options[2].Digits != "0" {
		t.Fatalf("announcement order not preserved: %+v", detected.Options)
	}
}

func TestExtractMenuOptionsLabelFirstShape(t *testing.T) {
	options := ExtractMenuOptions("to place an order, press 1. for hours and location, press 2")
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %+v", options)
	}
	if options[0].Label != "place an order" || options[0].Digits != "1" {
		t.Fatalf("unexpected first option: %+v", options[0])
	}
}

func TestExtractMenuOptionsIgnoresPlainSpeech(t *testing.T) {
	if options := ExtractMenuOptions("sure, what would you like to order today"); options != nil {
		t.Fatalf("plain speech produced menu options: %+v", options)
	}
}

func TestVoicemailGreetingDetection(t *testing.T) {
	classifier, log := collect(t)

	classifier.FinalTranscript("you've reached Zini's Pizza, please leave a message after the tone")

	if len(*log) != 2 {
		t.Fatalf("expected transcript + voicemail events, got %d", len(*log))
	}
	if (*log)[1].Kind() != events.KindVoicemailDetected {
		t.Fatalf("expected voicemail detection, got %q", (*log)[1].Kind())
	}
}

func TestLiveSpeechIsNotVoicemail(t *testing.T) {
	if IsVoicemailGreeting("hi, thanks for calling, how can I help you") {
		t.Fatal("live greeting classified as voicemail")
	}
}

func TestHungUpSealsClassifier(t *testing.T) {
	classifier, log := collect(t)

	classifier.HungUp()
	classifier.FinalTranscript("anybody there")
	classifier.SpeechStarted()
	classifier.HungUp()

	if len(*log) != 1 {
		t.Fatalf("expected only the hangup event, got %d", len(*log))
	}
	if (*log)[0].Kind() != events.KindCallHungUp {
		t.Fatalf("expected hangup event, got %q", (*log)[0].Kind())
	}
}

func TestInterimTranscriptNeverClassifies(t *testing.T) {
	classifier, log := collect(t)

	classifier.InterimTranscript("press 1 to place an order")

	if len(*log) != 1 {
		t.Fatalf("expected a single interim event, got %d", len(*log))
	}
	if (*log)[0].Kind() != events.KindLineTranscriptInterim {
		t.Fatalf("expected interim transcript, got %q", (*log)[0].Kind())
	}
}

func TestEmptyTranscriptsAreDropped(t *testing.T) {
	classifier, log := collect(t)

	classifier.FinalTranscript("")
	classifier.InterimTranscript("")

	if len(*log) != 0 {
		t.Fatalf("expected no events for empty transcripts, got %d", len(*log))
	}
}

func TestProgressForwarding(t *testing.T) {
	classifier, log := collect(t)

	classifier.Ringing()
	classifier.Answered()
	classifier.Silence()
	classifier.HoldMusic()
	classifier.SpeechStarted()
	classifier.SpeechEnded()
	classifier.DigitsResult("1", true)

	kinds := []events.Kind{
		events.KindCallRinging,
		events.KindCallAnswered,
		events.KindLineSilence,
		events.KindLineHoldMusic,
		events.KindLineSpeechStarted,
		events.KindLineSpeechEnded,
		events.KindDigitsResult,
	}
	if len(*log) != len(kinds) {
		t.Fatalf("expected %d events, got %d", len(kinds), len(*log))
	}
	for i, kind := range kinds {
		if (*log)[i].Kind() != kind {
			t.Fatalf("event %d: expected %q, got %q", i, kind, (*log)[i].Kind())
		}
	}
}

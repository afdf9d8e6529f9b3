package events

import (
	"testing"

	"github.com/orderline-ai/orderline/core/menu"
)

func TestEventKindsAreStable(t *testing.T) {
	cases := []struct {
		event Event
		kind  Kind
	}{
		{NewCallRinging(), "call_progress.ringing"},
		{NewCallAnswered(), "call_progress.answered"},
		{NewCallBusy(), "call_progress.busy"},
		{NewCallFailed("carrier timeout"), "call_progress.failed"},
		{NewCallHungUp(), "call_progress.hung_up"},
		{NewLineSilence(), "line_audio.silence"},
		{NewLineHoldMusic(), "line_audio.hold_music"},
		{NewLineSpeechStarted(), "line_audio.speech_started"},
		{NewLineSpeechEnded(), "line_audio.speech_ended"},
		{NewLineTranscriptInterim("hel"), "line_transcript.interim"},
		{NewLineTranscriptFinal("hello"), "line_transcript.final"},
		{NewMenuDetected("press 1", nil), "line_signal.menu_detected"},
		{NewVoicemailDetected("leave a message"), "line_signal.voicemail_detected"},
		{NewDigitsResult("1", true), "line_signal.dtmf_result"},
		{NewAgentSpeakStarted("hi"), "agent_action.speak_started"},
		{NewAgentSpeakFinished("hi"), "agent_action.speak_finished"},
		{NewAgentDigitsSent("1"), "agent_action.digits_sent"},
		{NewAgentBridged(), "agent_action.bridged"},
		{NewAgentActionFailed("bridge", "no destination"), "agent_action.failed"},
	}

	for _, c := range cases {
		if c.event.Kind() != c.kind {
			t.Fatalf("expected kind %q, got %q", c.kind, c.event.Kind())
		}
		if c.event.Timestamp().IsZero() {
			t.Fatalf("event %q has zero timestamp", c.kind)
		}
	}
}

func TestMenuDetectedCarriesOptions(t *testing.T) {
	options := []menu.Option{{Label: "place an order", Digits: "1"}}
	event := NewMenuDetected("press 1 to place an order", options)

	if len(event.Options) != 1 || event.Options[0].Digits != "1" {
		t.Fatalf("menu options not carried: %+v", event.Options)
	}
	if event.Prompt == "" {
		t.Fatal("menu prompt not carried")
	}
}

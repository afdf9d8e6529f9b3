package callsession

import "testing"

func TestLifecycleGraphAllowsSpecifiedPaths(t *testing.T) {
	paths := [][]State{
		{StateDialing, StateRinging, StateConnected, StateInConversation, StateEnded},
		{StateDialing, StateRinging, StateConnected, StateInConversation, StateTransferred, StateEnded},
		{StateDialing, StateRinging, StateConnected, StateVoicemail, StateEnded},
		{StateDialing, StateRinging, StateBusy, StateEnded},
		{StateDialing, StateRinging, StateNoAnswer, StateEnded},
		{StateDialing, StateFailed, StateEnded},
	}

	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			if !canTransition(path[i], path[i+1]) {
				t.Fatalf("transition %v -> %v refused", path[i], path[i+1])
			}
		}
	}
}

func TestLifecycleGraphRefusesBackwardsTransitions(t *testing.T) {
	refused := [][2]State{
		{StateEnded, StateDialing},
		{StateEnded, StateInConversation},
		{StateTransferred, StateInConversation},
		{StateBusy, StateConnected},
		{StateConnected, StateRinging},
		{StateInConversation, StateDialing},
	}

	for _, pair := range refused {
		if canTransition(pair[0], pair[1]) {
			t.Fatalf("transition %v -> %v must be refused", pair[0], pair[1])
		}
	}
}

func TestOnlyEndedIsTerminal(t *testing.T) {
	if !StateEnded.IsTerminal() {
		t.Fatal("ended must be terminal")
	}
	for _, state := range []State{StateDialing, StateRinging, StateConnected,
		StateInConversation, StateTransferred, StateVoicemail,
		StateNoAnswer, StateBusy, StateFailed} {
		if state.IsTerminal() {
			t.Fatalf("%v must not be terminal", state)
		}
	}
}

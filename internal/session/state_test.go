package session

import "testing"

func TestStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateRecording, true},
		{StateIdle, StateProcessing, true},
		{StateIdle, StateError, true},
		{StateRecording, StateRecording, false},
		{StateRecording, StateProcessing, true},
		{StateRecording, StateIdle, true},
		{StateRecording, StateError, false},
		{StateProcessing, StateRecording, false},
		{StateProcessing, StateIdle, true},
		{StateError, StateRecording, true},
		{StateError, StateIdle, true},
	}
	for _, tt := range tests {
		if got := isValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("isValidTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStateMachine_Listeners(t *testing.T) {
	sm := NewStateMachine()
	var seen []State
	sm.AddListener(func(_, next State) { seen = append(seen, next) })

	if !sm.Transition(StateRecording) {
		t.Fatal("Transition(recording) = false")
	}
	if sm.Transition(StateRecording) {
		t.Error("Transition(recording) twice = true")
	}
	sm.Transition(StateIdle)
	sm.Fail("no mic")

	if sm.Current() != StateError || sm.Reason() != "no mic" {
		t.Errorf("Current() = %v (%q), want error (no mic)", sm.Current(), sm.Reason())
	}
	if len(seen) != 3 {
		t.Errorf("listener calls = %d, want 3", len(seen))
	}
	if !sm.Transition(StateIdle) || sm.Reason() != "" {
		t.Error("leaving error did not clear the reason")
	}
}

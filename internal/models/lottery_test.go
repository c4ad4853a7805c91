package models

import "testing"

func TestWinnerStatus(t *testing.T) {
	if got := (Winner{}).Status(); got != "Main Winner" {
		t.Errorf("Expected main winner status, got %q", got)
	}
	if got := (Winner{IsBackup: true}).Status(); got != "Backup" {
		t.Errorf("Expected backup status, got %q", got)
	}
}

func TestDrawStateString(t *testing.T) {
	cases := map[DrawState]string{
		{Phase: PhaseIdle}:                      "idle",
		{Phase: PhaseArmed, Remaining: 10}:      "armed(10)",
		{Phase: PhaseCountingDown, Remaining: 0}: "counting_down(0)",
		{Phase: PhaseCompleted}:                 "completed",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}

func TestPrizeFillUnfilled(t *testing.T) {
	f := PrizeFill{RequestedWinners: 2, RequestedBackups: 2, Winners: 2}
	if f.Unfilled() != 2 {
		t.Errorf("Expected 2 unfilled slots, got %d", f.Unfilled())
	}
}

package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	base := func() *Session {
		return &Session{
			ID:    "sess-1",
			State: NewMachineState([]Symbol{One, One}, "s0"),
		}
	}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		diff := Diff(nil, base())
		if diff == nil {
			t.Fatal("Diff() = nil, want full diff")
		}
		if diff.Tape == nil || *diff.Tape != "11_" {
			t.Errorf("Diff().Tape = %v, want 11_", diff.Tape)
		}
		if diff.State == nil || *diff.State != "s0" {
			t.Errorf("Diff().State = %v, want s0", diff.State)
		}
	})

	t.Run("No Changes", func(t *testing.T) {
		if diff := Diff(base(), base()); diff != nil {
			t.Errorf("Diff() = %+v, want nil", diff)
		}
	})

	t.Run("Cell Rewrite", func(t *testing.T) {
		old := base()
		next := base()
		next.State.Tape.Set(1, Zero)
		next.State.Head = 1
		next.State.StepCount = 1
		next.History = []*MachineState{old.State}
		next.Outcome = Advanced

		diff := Diff(old, next)
		if diff == nil {
			t.Fatal("Diff() = nil")
		}
		if diff.Tape != nil {
			t.Errorf("Diff().Tape = %v, want nil for same-length tape", *diff.Tape)
		}
		if diff.Cells[1] != "0" || len(diff.Cells) != 1 {
			t.Errorf("Diff().Cells = %v, want {1: 0}", diff.Cells)
		}
		if diff.Head == nil || *diff.Head != 1 {
			t.Errorf("Diff().Head = %v, want 1", diff.Head)
		}
		if diff.HistoryLen == nil || *diff.HistoryLen != 1 {
			t.Errorf("Diff().HistoryLen = %v, want 1", diff.HistoryLen)
		}
		if diff.State != nil {
			t.Errorf("Diff().State = %v, want nil", *diff.State)
		}
	})

	t.Run("Tape Growth Sends Whole Tape", func(t *testing.T) {
		old := base()
		next := base()
		next.State.Tape.PushFront()

		diff := Diff(old, next)
		if diff == nil || diff.Tape == nil || *diff.Tape != "_11_" {
			t.Errorf("Diff().Tape = %+v, want _11_", diff)
		}
	})

	t.Run("Outcome Change", func(t *testing.T) {
		old := base()
		next := base()
		next.Outcome = Rejected

		diff := Diff(old, next)
		if diff == nil || diff.Outcome == nil || *diff.Outcome != Rejected {
			t.Errorf("Diff().Outcome = %+v, want rejected", diff)
		}
	})
}

func TestDiffJSONSerialization(t *testing.T) {
	old := &Session{ID: "s", State: NewMachineState([]Symbol{One}, "s0")}
	next := old.Snapshot()
	next.State.Head = 1

	diff := Diff(old, next)
	if diff == nil {
		t.Fatal("Expected diff, got nil")
	}
	bytes, _ := json.Marshal(diff)
	if strings.Contains(string(bytes), `"cells"`) || strings.Contains(string(bytes), `"tape"`) {
		t.Errorf("JSON should not contain tape fields when unchanged, got: %s", string(bytes))
	}
	if !strings.Contains(string(bytes), `"head":1`) {
		t.Errorf("JSON should contain head, got: %s", string(bytes))
	}
}

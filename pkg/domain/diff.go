package domain

// StateDiff represents the changes between two sessions.
// It is serialized to JSON and streamed to subscribers after every change.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	State     *ControlState `json:"state,omitempty"`
	Head      *int          `json:"head,omitempty"`
	StepCount *int          `json:"step_count,omitempty"`
	Outcome   *Outcome      `json:"outcome,omitempty"`

	// Cells holds rewritten cells keyed by index when the tape kept its length.
	Cells map[int]string `json:"cells,omitempty"`

	// Tape holds the whole tape when it grew, shrank (reset) or on initial load.
	Tape *string `json:"tape,omitempty"`

	// HistoryLen is set whenever the history length changed.
	HistoryLen *int `json:"history_len,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, it returns a diff representing the entire newSession.
// It returns nil when nothing changed.
func Diff(oldSession, newSession *Session) *StateDiff {
	if newSession == nil || newSession.State == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newSession.ID}
	cur := newSession.State

	var prev *MachineState
	if oldSession != nil {
		prev = oldSession.State
	}

	if prev == nil || prev.State != cur.State {
		diff.State = &cur.State
	}
	if prev == nil || prev.Head != cur.Head {
		diff.Head = &cur.Head
	}
	if prev == nil || prev.StepCount != cur.StepCount {
		diff.StepCount = &cur.StepCount
	}
	if oldSession == nil || oldSession.Outcome != newSession.Outcome {
		if newSession.Outcome != OutcomeNone {
			diff.Outcome = &newSession.Outcome
		}
	}

	diffTape(diff, prev, cur)

	oldLen := 0
	if oldSession != nil {
		oldLen = len(oldSession.History)
	}
	if newLen := len(newSession.History); oldSession == nil || newLen != oldLen {
		diff.HistoryLen = &newLen
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffTape(diff *StateDiff, prev, cur *MachineState) {
	if prev == nil || prev.Tape.Len() != cur.Tape.Len() {
		text := cur.Tape.String()
		diff.Tape = &text
		return
	}
	for i := 0; i < cur.Tape.Len(); i++ {
		if prev.Tape.At(i) != cur.Tape.At(i) {
			if diff.Cells == nil {
				diff.Cells = make(map[int]string)
			}
			diff.Cells[i] = cur.Tape.At(i).String()
		}
	}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.State == nil &&
		d.Head == nil &&
		d.StepCount == nil &&
		d.Outcome == nil &&
		len(d.Cells) == 0 &&
		d.Tape == nil &&
		d.HistoryLen == nil
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/runner"
)

const (
	colorHalted   = "#22c55e"
	colorRejected = "#ef4444"
	colorRunning  = "#38bdf8"
)

// RenderTape draws the tape on one line with the head cell highlighted,
// and a caret under the head on the next line.
func RenderTape(p termenv.Profile, tape *domain.Tape, head int) string {
	var cells, marker strings.Builder
	for i, sym := range tape.Cells() {
		cell := " " + sym.Display() + " "
		if i == head {
			cells.WriteString(p.String(cell).Reverse().Bold().String())
			marker.WriteString(" ^ ")
			continue
		}
		cells.WriteString(cell)
		marker.WriteString("   ")
	}
	return cells.String() + "\n" + strings.TrimRight(marker.String(), " ")
}

// RenderStatus summarises a controller view on one line.
func RenderStatus(p termenv.Profile, v runner.View) string {
	result := v.Result()
	state := p.String(string(v.State)).Bold()
	switch {
	case result == domain.Halted:
		state = state.Foreground(p.Color(colorHalted))
	case result == domain.Rejected:
		state = state.Foreground(p.Color(colorRejected))
	case v.Running:
		state = state.Foreground(p.Color(colorRunning))
	}

	mode := "paused"
	if v.Running {
		mode = "running"
	}
	if v.Terminal {
		mode = string(result)
	}
	return fmt.Sprintf("state %s | step %d | %s | speed %s", state, v.StepCount, mode, v.Speed.Round(time.Millisecond))
}

// RenderView is RenderTape followed by RenderStatus.
func RenderView(p termenv.Profile, v runner.View) string {
	return RenderTape(p, v.Tape, v.Head) + "\n" + RenderStatus(p, v)
}

// RenderTapeInline draws the tape on a single line with the head cell in
// brackets, for traces and logs.
func RenderTapeInline(p termenv.Profile, tape *domain.Tape, head int) string {
	var sb strings.Builder
	for i, sym := range tape.Cells() {
		if i == head {
			sb.WriteString(p.String("[" + sym.Display() + "]").Bold().String())
			continue
		}
		sb.WriteString(" " + sym.Display() + " ")
	}
	return sb.String()
}

package tui

import (
	"bytes"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/aretw0/turing/pkg/runner"
)

func TestRenderTape_MarksHead(t *testing.T) {
	tape := domain.NewTape(domain.One, domain.Zero, domain.Blank)

	out := RenderTape(termenv.Ascii, tape, 1)

	assert.Equal(t, " 1  0  □ \n    ^", out)
}

func TestRenderTapeInline(t *testing.T) {
	tape := domain.NewTape(domain.One, domain.Blank)

	assert.Equal(t, "[1] □ ", RenderTapeInline(termenv.Ascii, tape, 0))
}

func TestRenderStatus(t *testing.T) {
	v := runner.View{
		State:     "s2",
		StepCount: 10,
		Terminal:  true,
		Outcome:   domain.Halted,
		Speed:     200 * time.Millisecond,
	}
	assert.Equal(t, "state s2 | step 10 | halted | speed 200ms", RenderStatus(termenv.Ascii, v))

	v = runner.View{State: "s0", Running: true, Speed: time.Second}
	assert.Equal(t, "state s0 | step 0 | running | speed 1s", RenderStatus(termenv.Ascii, v))
}

func TestTableMarkdown(t *testing.T) {
	md := TableMarkdown(machines.Complement())

	assert.Contains(t, md, "# complement")
	assert.Contains(t, md, "Start `s0`, halt `s1`.")
	assert.Contains(t, md, "| s0 | `0` | `1` | R | s0 |")
	assert.Contains(t, md, "| s0 | `_` | keep | S | s1 |")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), "|_| \\__,_|_|")
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/runner"
)

// walk steps a fresh configuration built from input and hands every
// configuration to visit, starting with the reset one and ending with the
// terminal outcome. A limit <= 0 means no limit.
func walk(ctx context.Context, engine *turing.Engine, input string, limit int, visit func(runner.View) error) (domain.Outcome, error) {
	state := engine.NewState(input)
	view := func(outcome domain.Outcome) runner.View {
		return runner.View{
			Tape:      state.Tape,
			Head:      state.Head,
			State:     state.State,
			StepCount: state.StepCount,
			Outcome:   outcome,
			Terminal:  engine.IsTerminal(state, outcome),
		}
	}

	if err := visit(view(domain.OutcomeNone)); err != nil {
		return domain.OutcomeNone, err
	}
	for applied := 0; limit <= 0 || applied < limit; applied++ {
		if err := ctx.Err(); err != nil {
			return domain.OutcomeNone, err
		}
		res := engine.Step(ctx, state)
		if res.Outcome != domain.Advanced {
			return res.Outcome, visit(view(res.Outcome))
		}
		state = res.Next
		if err := visit(view(domain.Advanced)); err != nil {
			return domain.Advanced, err
		}
	}
	if state.State == engine.Definition().Halt() {
		return domain.Halted, nil
	}
	return domain.Advanced, fmt.Errorf("%w: %d steps", turing.ErrStepLimit, limit)
}

// Trace prints one line per configuration of a bounded run.
func Trace(ctx context.Context, engine *turing.Engine, input string, limit int, w io.Writer, p termenv.Profile) (domain.Outcome, error) {
	return walk(ctx, engine, input, limit, func(v runner.View) error {
		label := ""
		if v.Outcome.Terminal() {
			label = "  " + string(v.Outcome)
		}
		_, err := fmt.Fprintf(w, "%4d  %-4s %s%s\n", v.StepCount, v.State, tui.RenderTapeInline(p, v.Tape, v.Head), label)
		return err
	})
}

// StreamJSON writes every configuration of a bounded run as one JSON
// object per line.
func StreamJSON(ctx context.Context, engine *turing.Engine, input string, limit int, w io.Writer) (domain.Outcome, error) {
	enc := json.NewEncoder(w)
	return walk(ctx, engine, input, limit, func(v runner.View) error {
		return enc.Encode(v)
	})
}

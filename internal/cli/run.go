package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/runner"
)

const (
	minSpeed = 10 * time.Millisecond
	maxSpeed = 5 * time.Second
)

const keyHelp = "[space] run/pause  [n] step  [+/-] speed  [u] undo  [r] reset  [q] quit"

// RunMachine executes one machine in the terminal.
// Headless runs to completion and prints the result, JSON streams every
// configuration, otherwise the tape is animated on out.
func RunMachine(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	logger := createLogger(opts.Config, opts.Debug)

	loader, err := NewLoader(opts.Dir, opts.File)
	if err != nil {
		return err
	}
	def, err := ResolveDefinition(ctx, loader, opts.Machine)
	if err != nil {
		return err
	}
	engine, err := createEngine(def, logger, opts.Debug)
	if err != nil {
		return err
	}

	limit := opts.MaxSteps
	if limit <= 0 {
		limit = opts.Config.MaxSteps
	}

	switch {
	case opts.JSON:
		_, err := StreamJSON(ctx, engine, opts.Input, limit, out)
		return handleExecutionError(err)
	case opts.Headless:
		return handleExecutionError(runHeadless(ctx, engine, opts.Input, limit, out))
	default:
		speed := opts.Speed
		if speed <= 0 {
			speed = opts.Config.Speed
		}
		return handleExecutionError(runInteractive(ctx, engine, logger, opts.Input, speed, in, out))
	}
}

func runHeadless(ctx context.Context, engine *turing.Engine, input string, limit int, out io.Writer) error {
	res, err := engine.Run(ctx, engine.NewState(input), limit)
	if err != nil {
		return err
	}
	printSystemMessage(out, "%s after %d steps in state '%s'.", res.Outcome, res.State.StepCount, res.State.State)
	fmt.Fprintln(out, res.State.Tape.Trimmed())
	return nil
}

func runInteractive(ctx context.Context, engine *turing.Engine, logger *slog.Logger, input string, speed time.Duration, in io.Reader, out io.Writer) error {
	output := termenv.NewOutput(out)
	profile := output.EnvColorProfile()

	f, isFile := in.(*os.File)
	interactive := isFile && term.IsTerminal(int(f.Fd()))

	screen := &screen{out: out, profile: profile, raw: interactive}
	ctrl := runner.NewController(engine,
		runner.WithSpeed(speed),
		runner.WithLogger(logger),
		runner.WithObserver(screen.draw),
	)
	defer ctrl.Close()

	if !interactive {
		return autoRun(ctx, ctrl, input, out)
	}

	oldState, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer term.Restore(int(f.Fd()), oldState)

	tui.PrintBanner(out, profile)
	if err := ctrl.Reset(input); err != nil {
		return err
	}

	keys, readErr, stop := readKeys(f)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case key := <-keys:
			quit, err := handleKey(ctrl, key, input)
			if quit {
				return nil
			}
			screen.notice(err)
		}
	}
}

// keyReader is terminal input whose pending Read can be interrupted.
type keyReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// readKeys forwards single bytes from r until stop is called.
// stop expires the read deadline to release a pending Read, then clears it.
// Inputs without deadline support leave the reader parked in Read until the
// process exits.
func readKeys(r keyReader) (<-chan byte, <-chan error, func()) {
	keys := make(chan byte)
	errs := make(chan error, 1)
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		buf := make([]byte, 1)
		for {
			if _, err := r.Read(buf); err != nil {
				errs <- err
				return
			}
			select {
			case keys <- buf[0]:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			if err := r.SetReadDeadline(time.Now()); err != nil {
				return
			}
			<-exited
			_ = r.SetReadDeadline(time.Time{})
		})
	}
	return keys, errs, stop
}

// autoRun animates the machine until it stops by itself.
func autoRun(ctx context.Context, ctrl *runner.Controller, input string, out io.Writer) error {
	if err := ctrl.Reset(input); err != nil {
		return err
	}
	if err := ctrl.ToggleRun(); err != nil && !errors.Is(err, runner.ErrTerminal) {
		return err
	}
	if err := ctrl.Wait(ctx); err != nil {
		return err
	}
	v := ctrl.Snapshot()
	printSystemMessage(out, "%s after %d steps.", v.Result(), v.StepCount)
	return nil
}

// handleKey maps one key press to a controller command.
func handleKey(ctrl *runner.Controller, key byte, input string) (quit bool, err error) {
	switch key {
	case ' ':
		return false, ctrl.ToggleRun()
	case 'n':
		_, err := ctrl.SingleStep()
		return false, err
	case '+':
		return false, ctrl.SetSpeed(max(ctrl.Snapshot().Speed/2, minSpeed))
	case '-':
		return false, ctrl.SetSpeed(min(ctrl.Snapshot().Speed*2, maxSpeed))
	case 'u':
		return false, ctrl.Undo()
	case 'r':
		return false, ctrl.Reset(input)
	case 'q', 3, 4:
		return true, nil
	}
	return false, nil
}

// screen redraws the whole view on every change.
type screen struct {
	mu      sync.Mutex
	out     io.Writer
	profile termenv.Profile
	raw     bool
	last    runner.View
}

func (s *screen) draw(v runner.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = v
	if !s.raw {
		if v.Terminal {
			fmt.Fprintln(s.out, tui.RenderView(s.profile, v))
		}
		return
	}
	s.render(v, "")
}

func (s *screen) notice(err error) {
	if err == nil || !s.raw {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.render(s.last, s.profile.String(err.Error()).Foreground(s.profile.Color("#f59e0b")).String())
}

func (s *screen) render(v runner.View, message string) {
	if v.Tape == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString("\x1b[H\x1b[2J")
	sb.WriteString(tui.RenderView(s.profile, v))
	sb.WriteString("\n\n" + keyHelp + "\n")
	if message != "" {
		sb.WriteString(message + "\n")
	}
	if v.Outcome == domain.Rejected {
		sb.WriteString("no transition for this state and symbol\n")
	}
	// Raw mode does not translate newlines.
	fmt.Fprint(s.out, strings.ReplaceAll(sb.String(), "\n", "\r\n"))
}

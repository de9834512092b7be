/*
Package runner drives a machine interactively.

A Controller owns one MachineState, its history and the auto-run scheduler.
Commands (Reset, SingleStep, ToggleRun, SetSpeed, Undo) and scheduled ticks
are serialised by a mutex, so at most one step is ever in flight. Each
scheduled tick carries the epoch it was armed in; toggling, resetting,
changing speed or closing moves the epoch on and turns any pending tick into
a no-op.

# Usage

	ctrl := runner.NewController(engine, runner.WithSpeed(100*time.Millisecond))
	defer ctrl.Close()

	ctrl.Reset("111")
	_ = ctrl.ToggleRun()
	_ = ctrl.Wait(ctx)

	fmt.Println(ctrl.Snapshot().Tape)
*/
package runner

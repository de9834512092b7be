package runner

import (
	"testing"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StaleTickIsIgnored(t *testing.T) {
	eng, err := turing.New(machines.Incrementer())
	require.NoError(t, err)
	ctrl := NewController(eng, WithSpeed(time.Hour))
	defer ctrl.Close()

	require.NoError(t, ctrl.Reset("111"))
	require.NoError(t, ctrl.ToggleRun())

	ctrl.mu.Lock()
	stale := ctrl.epoch
	ctrl.mu.Unlock()

	// Toggling off and on again moves to a new generation.
	require.NoError(t, ctrl.ToggleRun())
	require.NoError(t, ctrl.ToggleRun())

	ctrl.tick(stale)
	assert.Equal(t, 0, ctrl.Snapshot().StepCount)

	ctrl.mu.Lock()
	current := ctrl.epoch
	ctrl.mu.Unlock()

	ctrl.tick(current)
	assert.Equal(t, 1, ctrl.Snapshot().StepCount)
	assert.True(t, ctrl.Snapshot().Running)
}

func TestController_TickAfterResetIsIgnored(t *testing.T) {
	eng, err := turing.New(machines.Incrementer())
	require.NoError(t, err)
	ctrl := NewController(eng, WithSpeed(time.Hour))
	defer ctrl.Close()

	require.NoError(t, ctrl.Reset("1"))
	require.NoError(t, ctrl.ToggleRun())

	ctrl.mu.Lock()
	stale := ctrl.epoch
	ctrl.mu.Unlock()

	require.NoError(t, ctrl.Reset("0"))
	ctrl.tick(stale)

	v := ctrl.Snapshot()
	assert.Equal(t, 0, v.StepCount)
	assert.Equal(t, "0_", v.Tape.String())
}

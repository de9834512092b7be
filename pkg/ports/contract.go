package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSession(id string) *domain.Session {
	state := domain.NewMachineState([]domain.Symbol{domain.One, domain.Zero}, "s0")
	next := state.Clone()
	next.Head = 1
	next.StepCount = 1
	return &domain.Session{
		ID:        id,
		Machine:   "incrementer",
		State:     next,
		History:   []*domain.MachineState{state},
		Outcome:   domain.Advanced,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := contractSession(sessionID)
		require.NoError(t, store.Save(ctx, session), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.Machine, loaded.Machine)
		assert.Equal(t, session.Outcome, loaded.Outcome)
		assert.True(t, session.State.Equal(loaded.State), "state mismatch")
		require.Len(t, loaded.History, 1)
		assert.True(t, session.History[0].Equal(loaded.History[0]), "history mismatch")
		assert.True(t, session.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Stored Copy Is Isolated", func(t *testing.T) {
		session := contractSession(sessionID)
		require.NoError(t, store.Save(ctx, session))

		session.State.Tape.Set(0, domain.Blank)
		session.State.Head = 7

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.State.Head)
		assert.Equal(t, domain.One, loaded.State.Tape.At(0))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractSession(sessionID)))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, contractSession(id1)))
		require.NoError(t, store.Save(ctx, contractSession(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunDefinitionLoaderContract verifies a DefinitionLoader against the
// definitions it is expected to serve.
func RunDefinitionLoaderContract(t *testing.T, loader DefinitionLoader, want ...*domain.Definition) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		for _, def := range want {
			got, err := loader.Get(ctx, def.Name)
			require.NoError(t, err, def.Name)
			assert.Equal(t, def.Name, got.Name)
			assert.Equal(t, def.Start, got.Start)
			assert.Equal(t, def.Halt(), got.Halt())
			assert.Equal(t, def.Table.Rules(), got.Table.Rules(), fmt.Sprintf("rules of %s", def.Name))
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		_, err := loader.Get(ctx, "non-existent-machine")
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	t.Run("List", func(t *testing.T) {
		names, err := loader.List(ctx)
		require.NoError(t, err)
		for _, def := range want {
			assert.Contains(t, names, def.Name)
		}
		assert.IsNonDecreasing(t, names)
	})
}

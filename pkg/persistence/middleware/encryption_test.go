package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/persistence/middleware"
	"github.com/aretw0/turing/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func secretSession() *domain.Session {
	return &domain.Session{
		ID:      "secret",
		Machine: "incrementer",
		State:   domain.NewMachineState([]domain.Symbol{domain.One, domain.One}, "s0"),
		Outcome: domain.Advanced,
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	key := generateKey(t)
	ports.RunSessionStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: key}))
	ports.RunSessionStoreContract(t, encrypted(t, file.New(t.TempDir()), middleware.EncryptionConfig{ActiveKey: key}))
}

func TestEncryptionMiddleware_HidesState(t *testing.T) {
	underlying := memory.NewStore()
	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, secretSession()))

	raw, err := underlying.Load(ctx, "secret")
	require.NoError(t, err)
	assert.Nil(t, raw.State, "tape must not be stored in the clear")
	assert.Empty(t, raw.History)
	assert.NotEmpty(t, raw.Sealed)
	assert.Equal(t, "incrementer", raw.Machine)

	loaded, err := store.Load(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, "11_", loaded.State.Tape.String())
	assert.Nil(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	require.NoError(t, encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey}).Save(ctx, secretSession()))

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := rotated.Load(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.Advanced, loaded.Outcome)

	wrong := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey})
	_, err = wrong.Load(ctx, "secret")
	assert.ErrorContains(t, err, "failed to decrypt session")
}

func TestEncryptionMiddleware_RefusesPlainSessions(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, secretSession()))

	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "secret")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestNewEncryptionMiddleware_KeySize(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.SessionStore) ports.SessionStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}

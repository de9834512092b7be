package loam

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) core.Repository {
	t.Helper()
	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	repo, err := loam.Init(absPath, loam.WithVersioning(false))
	require.NoError(t, err, "Failed to init loam repo")
	return repo
}

func TestLoader_Contract(t *testing.T) {
	repo := setupRepo(t)
	loader := New(repo)
	ctx := context.Background()

	for _, def := range machines.Builtin() {
		require.NoError(t, loader.Save(ctx, def))
	}

	ports.RunDefinitionLoaderContract(t, loader, machines.Builtin()...)
}

func TestLoader_HandWrittenDocument(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	err := repo.Save(ctx, core.Document{
		ID: "machines/flip.md",
		Content: `---
start: a
halt: h
transitions:
  - {state: a, read: 0, next: a, write: 1, move: R}
  - {state: a, read: 1, next: a, write: 0, move: R}
  - {state: a, read: _, next: h}
---
# Flip

Flips every bit.
`,
	})
	require.NoError(t, err)

	loader := New(repo)
	names, err := loader.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"machines/flip"}, names)

	def, err := loader.Get(ctx, "machines/flip")
	require.NoError(t, err)
	assert.Equal(t, "machines/flip", def.Name)
	assert.Equal(t, "Flips every bit.", def.Description)
	assert.Equal(t, domain.ControlState("h"), def.Halt())
	assert.Equal(t, 3, def.Table.Len())
}

func TestLoader_InvalidDocument(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	err := repo.Save(ctx, core.Document{
		ID: "broken.md",
		Content: `---
name: broken
start: a
halt: h
transitions:
  - {state: a, read: 7, next: h}
---
`,
	})
	require.NoError(t, err)

	_, err = New(repo).Get(ctx, "broken")
	assert.ErrorIs(t, err, domain.ErrInvalidSymbol)
}

func TestLoader_NameCollision(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	doc := "---\nname: same\nstart: a\nhalt: h\ntransitions: []\n---\n"
	require.NoError(t, repo.Save(ctx, core.Document{ID: "one.md", Content: doc}))
	require.NoError(t, repo.Save(ctx, core.Document{ID: "two.md", Content: doc}))

	_, err := New(repo).List(ctx)
	assert.ErrorContains(t, err, "collision detected")
}

func TestLoader_FrontmatterName(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	doc := `---
name: parity
start: a
halt: h
transitions:
  - {state: a, read: 0, next: a, move: R}
  - {state: a, read: _, next: h}
---
`
	require.NoError(t, repo.Save(ctx, core.Document{ID: "machines/p1.md", Content: doc}))

	loader := New(repo)
	names, err := loader.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"parity"}, names)

	def, err := loader.Get(ctx, "parity")
	require.NoError(t, err)
	assert.Equal(t, "parity", def.Name)
	assert.Equal(t, 2, def.Table.Len())

	_, err = loader.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrMachineNotFound)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "First para spans lines.", summary("# Title\n\nFirst para\nspans lines.\n\nSecond."))
	assert.Equal(t, "", summary("# Only a title\n"))
}

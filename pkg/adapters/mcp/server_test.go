package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *Server {
	mgr := session.NewManager(memory.NewStore(), memory.NewBuiltinLoader())
	return NewServer(mgr, logging.NewNop())
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return content.Text
}

func sessionOf(t *testing.T, res *mcp.CallToolResult) SessionResult {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var out SessionResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out
}

func TestTools_SessionFlow(t *testing.T) {
	s := newServer()
	ctx := context.Background()

	res, err := s.handleStartSession(ctx, call("start_session", map[string]any{
		"machine":    "incrementer",
		"input":      "0",
		"session_id": "m1",
	}))
	require.NoError(t, err)
	started := sessionOf(t, res)
	assert.Equal(t, "m1", started.ID)
	assert.Equal(t, "0_", started.Tape)

	res, err = s.handleStep(ctx, call("step", map[string]any{"session_id": "m1"}))
	require.NoError(t, err)
	assert.Equal(t, 1, sessionOf(t, res).StepCount)

	res, err = s.handleRun(ctx, call("run", map[string]any{"session_id": "m1", "limit": float64(50)}))
	require.NoError(t, err)
	done := sessionOf(t, res)
	assert.Equal(t, domain.Halted, done.Outcome)
	assert.True(t, done.Terminal)
	assert.Equal(t, 3, done.StepCount)

	res, err = s.handleGetSession(ctx, call("get_session", map[string]any{"session_id": "m1"}))
	require.NoError(t, err)
	assert.Equal(t, "1_", sessionOf(t, res).Tape)
}

func TestTools_Errors(t *testing.T) {
	s := newServer()
	ctx := context.Background()

	res, err := s.handleStep(ctx, call("step", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleStep(ctx, call("step", map[string]any{"session_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "not found")

	res, err = s.handleStartSession(ctx, call("start_session", map[string]any{"machine": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleRun(ctx, call("run", map[string]any{"session_id": "x", "limit": float64(-1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestTools_Machines(t *testing.T) {
	s := newServer()
	ctx := context.Background()

	res, err := s.handleListMachines(ctx, call("list_machines", nil))
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &names))
	assert.Equal(t, []string{"complement", "decrementer", "incrementer"}, names)

	res, err = s.handleDescribeMachine(ctx, call("describe_machine", map[string]any{"name": "complement"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "name: complement")
	assert.Contains(t, text(t, res), "halt: s1")
}

package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logging.NewNop()
	streams := NewStreamManager(logger)
	mgr := session.NewManager(memory.NewStore(), memory.NewBuiltinLoader(),
		session.WithChangeListener(streams.Publish),
	)
	handler, err := NewHandler(mgr,
		WithStreams(streams),
		WithLogger(logger),
		WithMetrics(promhttp.Handler()),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decodeSession(t *testing.T, data []byte) SessionView {
	t.Helper()
	var v SessionView
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/sessions", `{"id":"s1","machine":"incrementer","input":"111"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	v := decodeSession(t, body)
	assert.Equal(t, "111_", v.Tape)
	assert.Equal(t, domain.ControlState("s0"), v.State)

	resp, body = do(t, srv, http.MethodPost, "/sessions/s1/step", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	v = decodeSession(t, body)
	assert.Equal(t, 1, v.Head)
	assert.Equal(t, domain.Advanced, v.Outcome)

	resp, body = do(t, srv, http.MethodPost, "/sessions/s1/run", `{"limit": 100}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	v = decodeSession(t, body)
	assert.Equal(t, domain.Halted, v.Outcome)
	assert.True(t, v.Terminal)
	assert.Equal(t, "_1000_", v.Tape)
	assert.Equal(t, 10, v.StepCount)

	resp, body = do(t, srv, http.MethodPost, "/sessions/s1/undo", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	v = decodeSession(t, body)
	assert.Equal(t, 9, v.StepCount)
	assert.False(t, v.Terminal)

	resp, body = do(t, srv, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["s1"]`, string(body))

	resp, _ = do(t, srv, http.MethodDelete, "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name, method, path, body string
		status                   int
	}{
		{"missing body", http.MethodPost, "/sessions", "", http.StatusBadRequest},
		{"missing machine", http.MethodPost, "/sessions", `{"input":"1"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/sessions", `{"machine":"incrementer","tape":"1"}`, http.StatusBadRequest},
		{"bad id", http.MethodPost, "/sessions", `{"id":"../x","machine":"incrementer"}`, http.StatusBadRequest},
		{"unknown machine", http.MethodPost, "/sessions", `{"machine":"nope"}`, http.StatusNotFound},
		{"negative limit", http.MethodPost, "/sessions/x/run", `{"limit":-1}`, http.StatusBadRequest},
		{"unknown session", http.MethodPost, "/sessions/x/step", "", http.StatusNotFound},
		{"unknown machine detail", http.MethodGet, "/machines/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			assert.Contains(t, string(body), `"error"`)
		})
	}

	resp, _ := do(t, srv, http.MethodPost, "/sessions", `{"id":"u","machine":"complement"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodPost, "/sessions/u/undo", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMachines(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/machines", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []MachineView
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 3)
	assert.Equal(t, "complement", list[0].Name)
	assert.Empty(t, list[0].Transitions)

	resp, body = do(t, srv, http.MethodGet, "/machines/incrementer", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var def MachineView
	require.NoError(t, json.Unmarshal(body, &def))
	assert.Equal(t, domain.ControlState("s2"), def.Halt)
	assert.Len(t, def.Transitions, 8)
}

func TestMetaEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = do(t, srv, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"api_version":"1.0.0"`)

	resp, body = do(t, srv, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "openapi: 3.0.3")

	resp, _ = do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutesAreDocumented(t *testing.T) {
	spec, err := LoadSpec(context.Background())
	require.NoError(t, err)

	mgr := session.NewManager(memory.NewStore(), memory.NewBuiltinLoader())
	handler, err := NewHandler(mgr, WithMetrics(promhttp.Handler()))
	require.NoError(t, err)

	router, ok := handler.(chi.Routes)
	require.True(t, ok)
	err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimSuffix(route, "/")
		if route == "/machines/*" {
			route = "/machines/{name}"
		}
		item := spec.Paths.Value(route)
		if assert.NotNil(t, item, route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestSubscribeEvents(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/sessions", `{"id":"ev","machine":"complement","input":"10"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/ev/events?watch=tape", nil)
	require.NoError(t, err)
	stream, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(stream.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimPrefix(line, "data: ")
			}
		}
		close(lines)
	}()

	select {
	case first := <-lines:
		require.Equal(t, "connected", first)
	case <-ctx.Done():
		t.Fatal("no ping received")
	}

	resp, _ = do(t, srv, http.MethodPost, "/sessions/ev/step", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case msg := <-lines:
		var diff domain.StateDiff
		require.NoError(t, json.Unmarshal([]byte(msg), &diff))
		assert.Equal(t, "ev", diff.SessionID)
		assert.Equal(t, map[int]string{0: "0"}, diff.Cells)
	case <-ctx.Done():
		t.Fatal("no diff received")
	}
}

func TestWatchFilter(t *testing.T) {
	head := 1
	diff := &domain.StateDiff{Head: &head}

	assert.True(t, watchFilter(nil, diff))
	assert.True(t, watchFilter([]string{"head"}, diff))
	assert.False(t, watchFilter([]string{"tape", "outcome"}, diff))
}

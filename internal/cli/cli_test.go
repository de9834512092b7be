package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/aretw0/turing/pkg/runner"
)

const flipper = `
name: flipper
start: a
halt: done
transitions:
  - {state: a, read: "0", write: "1", move: R, next: a}
  - {state: a, read: "1", write: "0", move: R, next: a}
  - {state: a, read: "_", move: S, next: done}
`

func writeDefinition(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flipper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(flipper), 0o644))
	return path
}

func newEngine(t *testing.T, def *domain.Definition) *turing.Engine {
	t.Helper()
	engine, err := turing.New(def)
	require.NoError(t, err)
	return engine
}

func TestResolveDefinition(t *testing.T) {
	ctx := context.Background()

	t.Run("Builtin default", func(t *testing.T) {
		loader, err := NewLoader("", "")
		require.NoError(t, err)
		def, err := ResolveDefinition(ctx, loader, "")
		require.NoError(t, err)
		assert.Equal(t, DefaultMachine, def.Name)
	})

	t.Run("Builtin by name", func(t *testing.T) {
		loader, err := NewLoader("", "")
		require.NoError(t, err)
		def, err := ResolveDefinition(ctx, loader, "complement")
		require.NoError(t, err)
		assert.Equal(t, "complement", def.Name)
	})

	t.Run("Single file needs no name", func(t *testing.T) {
		loader, err := NewLoader("", writeDefinition(t))
		require.NoError(t, err)
		def, err := ResolveDefinition(ctx, loader, "")
		require.NoError(t, err)
		assert.Equal(t, "flipper", def.Name)
	})

	t.Run("Unknown machine", func(t *testing.T) {
		loader, err := NewLoader("", "")
		require.NoError(t, err)
		_, err = ResolveDefinition(ctx, loader, "nope")
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	t.Run("File and dir are exclusive", func(t *testing.T) {
		_, err := NewLoader(t.TempDir(), "x.yaml")
		assert.Error(t, err)
	})
}

func TestRunMachine_Headless(t *testing.T) {
	var out bytes.Buffer
	err := RunMachine(context.Background(), RunOptions{
		Input:    "111",
		Headless: true,
		Config:   config.Default(),
	}, strings.NewReader(""), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), ">>> halted after 10 steps in state 's2'.")
	assert.Contains(t, out.String(), "\n1000\n")
}

func TestRunMachine_HeadlessStepLimit(t *testing.T) {
	var out bytes.Buffer
	err := RunMachine(context.Background(), RunOptions{
		Input:    "111",
		Headless: true,
		MaxSteps: 3,
		Config:   config.Default(),
	}, strings.NewReader(""), &out)
	assert.ErrorIs(t, err, turing.ErrStepLimit)
}

func TestRunMachine_JSON(t *testing.T) {
	var out bytes.Buffer
	err := RunMachine(context.Background(), RunOptions{
		Machine: "incrementer",
		Input:   "111",
		JSON:    true,
		Config:  config.Default(),
	}, strings.NewReader(""), &out)
	require.NoError(t, err)

	var frames []map[string]any
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var frame map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &frame))
		frames = append(frames, frame)
	}
	// Reset configuration, ten advances and the halting probe.
	require.Len(t, frames, 12)
	assert.Equal(t, "111_", frames[0]["tape"])
	last := frames[len(frames)-1]
	assert.Equal(t, "halted", last["outcome"])
	assert.Equal(t, true, last["terminal"])
	assert.Contains(t, last["tape"], "1000")
}

func TestRunMachine_AutoRunWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	err := RunMachine(context.Background(), RunOptions{
		File:   writeDefinition(t),
		Input:  "0110",
		Speed:  time.Millisecond,
		Config: config.Default(),
	}, strings.NewReader(""), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), ">>> halted after 5 steps.")
}

func TestTrace(t *testing.T) {
	engine := newEngine(t, machines.Complement())

	var out bytes.Buffer
	outcome, err := Trace(context.Background(), engine, "10", 0, &out, termenv.Ascii)
	require.NoError(t, err)
	assert.Equal(t, domain.Halted, outcome)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	// Three advances into s1, then the halting probe.
	require.Len(t, lines, 5)
	assert.Equal(t, "   0  s0   [1] 0  □ ", lines[0])
	assert.Equal(t, "   2  s0    0  1 [□]", lines[2])
	assert.True(t, strings.HasSuffix(lines[4], "halted"), lines[4])
}

func TestTrace_StepLimit(t *testing.T) {
	engine := newEngine(t, machines.Incrementer())

	var out bytes.Buffer
	_, err := Trace(context.Background(), engine, "111", 2, &out, termenv.Ascii)
	assert.ErrorIs(t, err, turing.ErrStepLimit)
	assert.Len(t, strings.Split(strings.TrimRight(out.String(), "\n"), "\n"), 3)
}

func TestTrace_Rejection(t *testing.T) {
	def := machines.Incrementer()
	engine := newEngine(t, def)

	// The incrementer has no rule for (s1, blank) when the input is empty.
	var out bytes.Buffer
	outcome, err := Trace(context.Background(), engine, "", 0, &out, termenv.Ascii)
	require.NoError(t, err)
	assert.Equal(t, domain.Rejected, outcome)
	assert.Contains(t, out.String(), "rejected")
}

func TestHandleKey(t *testing.T) {
	ctrl := runner.NewController(newEngine(t, machines.Incrementer()))
	defer ctrl.Close()
	require.NoError(t, ctrl.Reset("1"))

	quit, err := handleKey(ctrl, 'n', "1")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, 1, ctrl.Snapshot().StepCount)

	_, err = handleKey(ctrl, 'u', "1")
	require.NoError(t, err)
	assert.Equal(t, 0, ctrl.Snapshot().StepCount)

	_, err = handleKey(ctrl, 'u', "1")
	assert.ErrorIs(t, err, runner.ErrNoHistory)

	_, err = handleKey(ctrl, '+', "1")
	require.NoError(t, err)
	assert.Equal(t, runner.DefaultSpeed/2, ctrl.Snapshot().Speed)

	_, err = handleKey(ctrl, '-', "1")
	require.NoError(t, err)
	assert.Equal(t, runner.DefaultSpeed, ctrl.Snapshot().Speed)

	_, err = handleKey(ctrl, 'n', "1")
	require.NoError(t, err)
	_, err = handleKey(ctrl, 'r', "1")
	require.NoError(t, err)
	assert.Equal(t, 0, ctrl.Snapshot().StepCount)

	_, err = handleKey(ctrl, ' ', "1")
	require.NoError(t, err)
	assert.True(t, ctrl.Snapshot().Running)
	_, err = handleKey(ctrl, 'n', "1")
	assert.ErrorIs(t, err, runner.ErrRunning)
	_, err = handleKey(ctrl, ' ', "1")
	require.NoError(t, err)
	assert.False(t, ctrl.Snapshot().Running)

	quit, err = handleKey(ctrl, 'q', "1")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestReadKeys_StopReleasesPendingRead(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(); _ = w.Close() })

	keys, errs, stop := readKeys(r)
	_, err = w.Write([]byte("n"))
	require.NoError(t, err)
	assert.Equal(t, byte('n'), <-keys)

	// The reader is now blocked in Read with nothing to consume.
	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not release the pending read")
	}
	assert.ErrorIs(t, <-errs, os.ErrDeadlineExceeded)

	// The deadline is cleared, so the input stays usable.
	_, err = w.Write([]byte("q"))
	require.NoError(t, err)
	buf := make([]byte, 1)
	_, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, byte('q'), buf[0])
}

func TestHandleKey_SpeedIsClamped(t *testing.T) {
	ctrl := runner.NewController(newEngine(t, machines.Incrementer()), runner.WithSpeed(minSpeed))
	defer ctrl.Close()

	_, err := handleKey(ctrl, '+', "")
	require.NoError(t, err)
	assert.Equal(t, minSpeed, ctrl.Snapshot().Speed)
}

func TestSetupPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, locker, closeFn, err := setupPersistence(ctx, config.Default())
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
		assert.Nil(t, locker)
		assert.NoError(t, closeFn())
	})

	t.Run("file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store = config.StoreFile
		cfg.SessionDir = t.TempDir()
		store, _, _, err := setupPersistence(ctx, cfg)
		require.NoError(t, err)
		assert.IsType(t, &file.Store{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Store = config.StoreRedis
		cfg.RedisAddr = mr.Addr()
		store, locker, closeFn, err := setupPersistence(ctx, cfg)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &redis.Store{}, store)
		assert.IsType(t, &redis.Locker{}, locker)
	})

	t.Run("encrypted", func(t *testing.T) {
		cfg := config.Default()
		cfg.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
		store, _, _, err := setupPersistence(ctx, cfg)
		require.NoError(t, err)
		assert.NotEqual(t, fmt.Sprintf("%T", &memory.Store{}), fmt.Sprintf("%T", store))

		sess := &domain.Session{ID: "x", Machine: "incrementer", State: domain.NewMachineState(nil, "s0")}
		require.NoError(t, store.Save(ctx, sess))
		loaded, err := store.Load(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, "_", loaded.State.Tape.String())
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		cfg := config.Default()
		cfg.Store = config.StoreRedis
		cfg.RedisAddr = addr
		_, _, _, err := setupPersistence(ctx, cfg)
		assert.Error(t, err)
	})
}

func TestNewSessionManager_RunsSessions(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewBuiltinLoader()

	mgr, closeFn, err := NewSessionManager(ctx, config.Default(), loader, logging.NewNop())
	require.NoError(t, err)
	defer closeFn()

	_, err = mgr.Start(ctx, "cli", "incrementer", "0")
	require.NoError(t, err)
	sess, err := mgr.Run(ctx, "cli", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Halted, sess.Outcome)
}

func TestNewServerHandler(t *testing.T) {
	handler, closeFn, err := NewServerHandler(context.Background(), ServeOptions{Config: config.Default()})
	require.NoError(t, err)
	defer closeFn()

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sessions", "application/json", strings.NewReader(`{"id":"s1","machine":"incrementer","input":"1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/sessions/s1/run", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `turing_steps_total{machine="incrementer"}`)
	assert.Contains(t, body.String(), "go_goroutines")
}

func TestListMachinesAndValidate(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewBuiltinLoader()

	var out bytes.Buffer
	require.NoError(t, ListMachines(ctx, loader, &out))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "decrementer")

	out.Reset()
	require.NoError(t, Validate(ctx, loader, nil, &out))
	assert.Contains(t, out.String(), "✓ incrementer")

	out.Reset()
	err := Validate(ctx, loader, []string{"ghost"}, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "✗ ghost")
}

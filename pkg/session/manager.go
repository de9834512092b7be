package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// DefaultMaxSteps bounds a single Run call.
const DefaultMaxSteps = 10000

// DefaultLockTTL is the lease of a distributed session lock.
const DefaultLockTTL = 30 * time.Second

// ErrNoHistory is returned by Undo on a session without committed steps.
var ErrNoHistory = errors.New("no history to undo")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store  ports.SessionStore
	loader ports.DefinitionLoader

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	maxSteps int
	hooks    domain.LifecycleHooks
	listener ChangeListener
	logger   *slog.Logger
	now      func() time.Time
}

// ChangeListener is told about every persisted change. before is nil for a
// freshly started session. It runs while the session lock is held.
type ChangeListener func(ctx context.Context, before, after *domain.Session)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithMaxSteps caps the number of steps a single Run may apply.
func WithMaxSteps(n int) Option {
	return func(m *Manager) {
		m.maxSteps = n
	}
}

// WithLifecycleHooks forwards hooks to every engine the manager builds.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithChangeListener registers a listener for persisted changes.
func WithChangeListener(l ChangeListener) Option {
	return func(m *Manager) {
		m.listener = l
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the clock used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager over store and loader.
func NewManager(store ports.SessionStore, loader ports.DefinitionLoader, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		loader:   loader,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		maxSteps: DefaultMaxSteps,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) engine(ctx context.Context, machine string) (*turing.Engine, error) {
	def, err := m.loader.Get(ctx, machine)
	if err != nil {
		return nil, err
	}
	return turing.New(def,
		turing.WithLogger(m.logger),
		turing.WithLifecycleHooks(m.hooks),
	)
}

// Start creates (or resets) session id on machine with the tape built from
// text. An empty id is replaced by a random one.
func (m *Manager) Start(ctx context.Context, id, machine, text string) (*domain.Session, error) {
	if id == "" {
		var err error
		if id, err = newID(); err != nil {
			return nil, err
		}
	}

	eng, err := m.engine(ctx, machine)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:        id,
		Machine:   machine,
		State:     eng.NewState(text),
		UpdatedAt: m.now(),
	}
	err = m.WithLock(ctx, id, func(ctx context.Context) error {
		if err := m.store.Save(ctx, session); err != nil {
			return err
		}
		m.notify(ctx, nil, session)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	m.logger.Info("session started", "session_id", id, "machine", machine, "tape", session.State.Tape.String())
	return session, nil
}

// Get loads a session.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, id)
		return err
	})
	return session, err
}

// Step applies one transition and persists the result.
// Halted and Rejected are recorded as the session outcome without touching
// the configuration.
func (m *Manager) Step(ctx context.Context, id string) (*domain.Session, error) {
	return m.update(ctx, id, func(ctx context.Context, eng *turing.Engine, s *domain.Session) error {
		if s.Outcome == domain.Rejected {
			return nil
		}
		res := eng.Step(ctx, s.State)
		if res.Outcome == domain.Advanced {
			s.History = append(s.History, res.Previous)
			s.State = res.Next
		}
		s.Outcome = res.Outcome
		return nil
	})
}

// Run steps the session until it halts, rejects or limit steps were applied.
// limit is clamped to the manager's maximum; a limit <= 0 means the maximum.
// Reaching the limit is not an error: the session outcome stays Advanced.
func (m *Manager) Run(ctx context.Context, id string, limit int) (*domain.Session, error) {
	if limit <= 0 || limit > m.maxSteps {
		limit = m.maxSteps
	}
	return m.update(ctx, id, func(ctx context.Context, eng *turing.Engine, s *domain.Session) error {
		if s.Outcome == domain.Rejected {
			return nil
		}
		res, err := eng.Run(ctx, s.State, limit)
		if err != nil && !errors.Is(err, turing.ErrStepLimit) {
			return err
		}
		s.History = append(s.History, res.History...)
		s.State = res.State
		s.Outcome = res.Outcome
		return nil
	})
}

// Undo restores the configuration before the last committed step.
func (m *Manager) Undo(ctx context.Context, id string) (*domain.Session, error) {
	return m.update(ctx, id, func(ctx context.Context, _ *turing.Engine, s *domain.Session) error {
		if len(s.History) == 0 {
			return ErrNoHistory
		}
		last := len(s.History) - 1
		s.State = s.History[last]
		s.History = s.History[:last]
		s.Outcome = domain.OutcomeNone
		return nil
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Machines lists the definitions sessions can be started on.
func (m *Manager) Machines(ctx context.Context) ([]string, error) {
	return m.loader.List(ctx)
}

// Definition resolves a machine by name.
func (m *Manager) Definition(ctx context.Context, name string) (*domain.Definition, error) {
	return m.loader.Get(ctx, name)
}

func (m *Manager) update(ctx context.Context, id string, fn func(context.Context, *turing.Engine, *domain.Session) error) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		eng, err := m.engine(ctx, s.Machine)
		if err != nil {
			return err
		}
		var before *domain.Session
		if m.listener != nil {
			before = s.Snapshot()
		}
		if err := fn(ctx, eng, s); err != nil {
			return err
		}
		s.UpdatedAt = m.now()
		if err := m.store.Save(ctx, s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		m.notify(ctx, before, s)
		session = s
		return nil
	})
	return session, err
}

func (m *Manager) notify(ctx context.Context, before, after *domain.Session) {
	if m.listener != nil {
		m.listener(ctx, before, after)
	}
}

func newID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

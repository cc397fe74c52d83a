package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	drepo "TicketPulse/internal/domain/repository"
	applogger "TicketPulse/pkg/logger"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrSessionLocked   = errors.New("monitor session is locked")
)

// MonitorSession gates the Poller behind the dashboard password. Polling runs
// only while the session is unlocked and stops as soon as it is locked.
type MonitorSession struct {
	poller       *Poller
	store        drepo.SnapshotStore
	loginEnabled bool
	password     string
	log          *applogger.Logger
	onLock       []func()

	mu     sync.Mutex
	parent context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// SessionOption configures MonitorSession.
type SessionOption func(*MonitorSession)

// WithLogin requires password for Unlock.
func WithLogin(enabled bool, password string) SessionOption {
	return func(s *MonitorSession) {
		s.loginEnabled = enabled
		s.password = password
	}
}

// WithLockHook runs fn after every Lock, once polling has stopped.
func WithLockHook(fn func()) SessionOption {
	return func(s *MonitorSession) { s.onLock = append(s.onLock, fn) }
}

func WithSessionLogger(l *applogger.Logger) SessionOption {
	return func(s *MonitorSession) { s.log = l }
}

func NewMonitorSession(poller *Poller, store drepo.SnapshotStore, opts ...SessionOption) *MonitorSession {
	s := &MonitorSession{
		poller: poller,
		store:  store,
		log:    applogger.Nop(),
		parent: context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the session to ctx. Without a login the session unlocks at once.
func (s *MonitorSession) Start(ctx context.Context) {
	s.mu.Lock()
	s.parent = ctx
	s.mu.Unlock()

	if !s.loginEnabled {
		_ = s.Unlock("")
	}
}

// Unlock starts polling with fresh state. Unlocking an unlocked session is a no-op.
func (s *MonitorSession) Unlock(password string) error {
	if s.loginEnabled && subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return ErrInvalidPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(s.parent)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go func() {
		defer close(done)
		s.poller.Run(ctx)
	}()
	s.log.Info("monitor session unlocked")
	return nil
}

// Lock stops polling, waits for the in-flight cycle to be discarded and clears
// the published snapshot.
func (s *MonitorSession) Lock(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		s.cancel()
		<-s.done
		s.cancel, s.done = nil, nil
		s.log.Info("monitor session locked")
	}

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	for _, fn := range s.onLock {
		fn()
	}
	return nil
}

// Unlocked reports whether polling is running.
func (s *MonitorSession) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// LoginEnabled reports whether Unlock checks a password.
func (s *MonitorSession) LoginEnabled() bool { return s.loginEnabled }

// Refresh requests an immediate extra cycle.
func (s *MonitorSession) Refresh() error {
	if !s.Unlocked() {
		return ErrSessionLocked
	}
	s.poller.Refresh()
	return nil
}

// Stop ends polling at shutdown without touching the store.
func (s *MonitorSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		s.cancel()
		<-s.done
		s.cancel, s.done = nil, nil
	}
}

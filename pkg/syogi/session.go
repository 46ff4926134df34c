package syogi

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one game held by a Manager. Its Engine must only be used
// through Do when the session is shared between goroutines.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	mu     sync.Mutex
	engine *Engine
}

// Do runs fn with exclusive access to the session's engine and bumps
// UpdatedAt.
func (s *Session) Do(fn func(*Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.engine)
	s.UpdatedAt = time.Now()
	return err
}

// Engine returns the session's engine for single-goroutine callers.
func (s *Session) Engine() *Engine {
	return s.engine
}

type Manager struct {
	mu     sync.RWMutex
	games  map[string]*Session
	logger *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{games: make(map[string]*Session), logger: logger}
}

// NewGame starts a game with h applied to side. Hirate ignores side.
func (m *Manager) NewGame(h Handicap, side Side) (*Session, error) {
	id := uuid.NewString()
	engine := NewEngine(WithLogger(m.logger.With(zap.String("game", id))))
	if h != Hirate {
		if err := engine.SetHandicap(side, h); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	s := &Session{ID: id, CreatedAt: now, UpdatedAt: now, engine: engine}

	m.mu.Lock()
	m.games[id] = s
	m.mu.Unlock()
	m.logger.Info("game created", zap.String("game", id), zap.Stringer("handicap", h))
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return s, nil
}

func (m *Manager) Touch(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Do(func(*Engine) error { return nil })
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	delete(m.games, id)
	m.logger.Info("game deleted", zap.String("game", id))
	return nil
}

// List returns every session, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.games))
	for _, s := range m.games {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

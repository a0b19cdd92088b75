package session

import (
	"context"
	"sync"

	"backend-trailview/internal/logging"
	"backend-trailview/internal/trail"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the live sessions of this instance.
type Manager struct {
	ctx     context.Context
	catalog *trail.Catalog
	pub     Publisher
	opts    Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager whose terrain render loops stop when ctx
// is cancelled.
func NewManager(ctx context.Context, catalog *trail.Catalog, pub Publisher, opts Options) *Manager {
	return &Manager{
		ctx:      ctx,
		catalog:  catalog,
		pub:      pub,
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

func (m *Manager) Create() *Session {
	s := newSession(m.ctx, uuid.NewString(), m.catalog, m.pub, m.opts)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	logging.L().Debug("session created", zap.String("session", s.ID))
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	logging.L().Debug("session closed", zap.String("session", id))
	return nil
}

// CloseAll tears every session down, typically on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Attach returns the catch-up events for a websocket client.
func (m *Manager) Attach(id string) ([][]byte, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

func (m *Manager) Handle(id string, msg []byte) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Handle(msg)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront/internal/cart"
	"github.com/ikkim/storefront/internal/cartview"
	"github.com/ikkim/storefront/internal/storage"
	"github.com/ikkim/storefront/pkg/logger"
	"github.com/ikkim/storefront/pkg/storefrontapi"
)

var ErrInvalidSessionID = errors.New("invalid session id")

// SinkFactory builds extra cartview sinks for a new session, e.g. the
// websocket push.
type SinkFactory func(sessionID string) cartview.Sink

// Manager creates sessions on first sight and keeps the live ones in memory.
// Cart state outlives eviction because it sits in local storage.
type Manager struct {
	backend storage.Backend
	api     *storefrontapi.Client
	sinks   []SinkFactory
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(backend storage.Backend, api *storefrontapi.Client, sinks ...SinkFactory) *Manager {
	return &Manager{
		backend:  backend,
		api:      api,
		sinks:    sinks,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the live session for id, restoring it from storage if it was
// evicted or never loaded.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSessionID, id)
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
		return s, nil
	}

	// The restore runs unlocked. When two requests race, the first inserted
	// session wins.
	built, err := m.build(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		s.touch(m.now())
		return s, nil
	}
	m.sessions[id] = built
	m.mu.Unlock()

	logger.Debug("Session loaded", map[string]interface{}{
		"session_id": id,
		"cart_count": built.Cart.Count(),
	})
	return built, nil
}

func (m *Manager) build(ctx context.Context, id string) (*Session, error) {
	ls, err := storage.NewLocalStorage(m.backend, id)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	store := cart.NewStore(ctx, ls)
	last := &cartview.LastRender{}
	view := cartview.New(store, last)
	for _, factory := range m.sinks {
		view.AddSink(factory(id))
	}
	store.Subscribe(view)

	return &Session{
		ID:       id,
		Cart:     store,
		View:     view,
		Last:     last,
		API:      m.api.WithJar(jar),
		Storage:  ls,
		Jar:      jar,
		lastSeen: m.now(),
	}, nil
}

// Lookup returns a live session without loading it.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Regions renders the cart of a live session. It backs websocket refreshes.
func (m *Manager) Regions(id string) (cartview.Regions, bool) {
	s, ok := m.Lookup(id)
	if !ok {
		return cartview.Regions{}, false
	}
	return s.Regions(), true
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Live returns the ids of sessions in memory.
func (m *Manager) Live() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Sweep evicts sessions idle for longer than idle and returns how many went.
// keep reports sessions that must stay, such as ones with open tabs.
func (m *Manager) Sweep(idle time.Duration, keep func(id string) bool) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if keep != nil && keep(id) {
			continue
		}
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

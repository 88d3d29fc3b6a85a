// Package session owns the per-visitor application state: the cart store,
// its view, the remote API client carrying the visitor's cookies and the
// pending flash messages.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ikkim/storefront/internal/cart"
	"github.com/ikkim/storefront/internal/cartview"
	"github.com/ikkim/storefront/internal/storage"
	"github.com/ikkim/storefront/pkg/storefrontapi"
)

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is one visitor
type Session struct {
	ID      string
	Cart    *cart.Store
	View    *cartview.View
	Last    *cartview.LastRender
	API     *storefrontapi.Client
	Storage *storage.LocalStorage
	Jar     http.CookieJar

	mu       sync.Mutex
	flashes  []Flash
	lastSeen time.Time
}

// AddFlash queues a message for the next page.
func (s *Session) AddFlash(kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, Flash{Kind: kind, Message: message})
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

// Regions returns the last pushed render when it matches the cart's current
// version, and renders now otherwise.
func (s *Session) Regions() cartview.Regions {
	if regions, ok := s.Last.Get(); ok && regions.Version == s.Cart.Version() {
		return regions
	}
	regions := s.View.Render()
	s.Last.Push(context.Background(), regions)
	return regions
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ikkim/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// StorageKey is the fixed local storage key holding the serialized cart.
const StorageKey = "cart"

var (
	ErrItemNotFound   = errors.New("cart item not found")
	ErrInvalidProduct = errors.New("invalid product")
	// ErrPersist wraps storage failures; the in-memory cart still changed.
	ErrPersist = errors.New("failed to persist cart")
)

// Storage is the key/value surface the store persists into.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// Observer is told about every mutation, after it has been applied.
type Observer interface {
	CartChanged(ctx context.Context, items []LineItem)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, items []LineItem)

func (f ObserverFunc) CartChanged(ctx context.Context, items []LineItem) {
	f(ctx, items)
}

// Snapshot is the cart state read under a single lock. Version grows with
// every mutation.
type Snapshot struct {
	Items      []LineItem
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
	Count      int
	Version    uint64
}

type subscription struct {
	id       int
	observer Observer
}

// Store owns one visitor's cart: ordered line items, persistence and totals.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	items   []LineItem
	version uint64

	obsMu     sync.Mutex
	observers []subscription
	nextObsID int
}

// NewStore restores the cart from storage. Unreadable or malformed state
// yields an empty cart.
func NewStore(ctx context.Context, storage Storage, observers ...Observer) *Store {
	s := &Store{storage: storage}
	s.items = s.restore(ctx)
	for _, o := range observers {
		s.Subscribe(o)
	}
	return s
}

func (s *Store) restore(ctx context.Context) []LineItem {
	raw, ok, err := s.storage.GetItem(ctx, StorageKey)
	if err != nil {
		logger.Error("Failed to read persisted cart, starting empty", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	items, err := Decode(raw)
	if err != nil {
		logger.Warn("Malformed persisted cart, starting empty", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	logger.Debug("Cart restored from storage", map[string]interface{}{
		"count": len(items),
	})
	return items
}

// Decode parses persisted cart JSON. Entries without an id or with a
// non-positive quantity are dropped; repeated ids are merged into the first.
func Decode(raw string) ([]LineItem, error) {
	var decoded []LineItem
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(decoded))
	index := make(map[string]int, len(decoded))
	for _, item := range decoded {
		if item.ID == "" || item.Quantity <= 0 {
			continue
		}
		if i, seen := index[item.ID]; seen {
			items[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	return items, nil
}

// Subscribe registers an observer and returns its unsubscribe func.
func (s *Store) Subscribe(o Observer) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, subscription{id: id, observer: o})

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// AddItem increments the quantity of a matching item or appends a new one.
func (s *Store) AddItem(ctx context.Context, p Product) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, newLineItem(p))
	}
	snapshot, err := s.persistLocked(ctx)
	s.mu.Unlock()

	logger.Debug("Item added to cart", map[string]interface{}{
		"product_id": p.ID,
		"merged":     found,
	})
	s.notify(ctx, snapshot)
	return err
}

// RemoveItem drops the item with the given id. Removing an absent id still
// persists and notifies.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	snapshot, err := s.persistLocked(ctx)
	s.mu.Unlock()

	logger.Debug("Item removed from cart", map[string]interface{}{
		"product_id": id,
	})
	s.notify(ctx, snapshot)
	return err
}

// UpdateQuantity sets an item's quantity; zero or less removes the item.
func (s *Store) UpdateQuantity(ctx context.Context, id string, qty int) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if qty <= 0 {
		s.mu.Unlock()
		return s.RemoveItem(ctx, id)
	}
	s.items[idx].Quantity = qty
	snapshot, err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(ctx, snapshot)
	return err
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	snapshot, err := s.persistLocked(ctx)
	s.mu.Unlock()

	logger.Debug("Cart cleared")
	s.notify(ctx, snapshot)
	return err
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Snapshot returns items, totals and version as one consistent state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subtotal := s.subtotalLocked()
	shipping := s.shippingLocked()
	return Snapshot{
		Items:      s.snapshotLocked(),
		Subtotal:   subtotal,
		Shipping:   shipping,
		GrandTotal: subtotal.Add(shipping),
		Count:      s.countLocked(),
		Version:    s.version,
	}
}

// Version is the number of mutations applied since the store was loaded.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subtotal is Σ price × quantity.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtotalLocked()
}

// Shipping is the flat fee for a non-empty cart, zero otherwise.
func (s *Store) Shipping() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shippingLocked()
}

func (s *Store) GrandTotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtotalLocked().Add(s.shippingLocked())
}

// Count is the total number of units, shown in the cart badge.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

func (s *Store) subtotalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (s *Store) shippingLocked() decimal.Decimal {
	if len(s.items) == 0 {
		return decimal.Zero
	}
	return ShippingFee
}

func (s *Store) countLocked() int {
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// persistLocked bumps the version and writes the current items under
// StorageKey. The in-memory state is kept even when the write fails.
func (s *Store) persistLocked(ctx context.Context) ([]LineItem, error) {
	s.version++
	snapshot := s.snapshotLocked()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return snapshot, fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.SetItem(ctx, StorageKey, string(data)); err != nil {
		logger.Error("Failed to persist cart", err, map[string]interface{}{
			"count": len(snapshot),
		})
		return snapshot, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return snapshot, nil
}

func (s *Store) notify(ctx context.Context, items []LineItem) {
	s.obsMu.Lock()
	subs := make([]subscription, len(s.observers))
	copy(subs, s.observers)
	s.obsMu.Unlock()

	for _, sub := range subs {
		sub.observer.CartChanged(ctx, items)
	}
}

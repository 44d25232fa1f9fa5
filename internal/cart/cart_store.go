// Package cart is the locally-owned shopping cart: (productID, quantity)
// pairs persisted synchronously on every mutation. It has no server
// dependency; joining entries with live product data is the catalog
// resolver's job.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/storage"

	"go.uber.org/zap"
)

// Entry is one line of purchase intent. The JSON layout matches what the
// web client persisted under the "cart" key, so an existing state file
// rehydrates unchanged.
type Entry struct {
	ProductID string `json:"_id"`
	Quantity  int    `json:"quantity"`
}

// Listener receives a snapshot of the full cart after every successful
// mutation. Snapshots are copies; listeners may keep them.
type Listener func(entries []Entry)

type Store struct {
	mu        sync.Mutex
	entries   []Entry
	storage   storage.Store
	logger    *zap.Logger
	listeners map[int]Listener
	nextSub   int
}

// NewStore loads the persisted cart from st. Malformed persisted data is
// dropped and the store starts empty.
func NewStore(st storage.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		storage:   st,
		logger:    logger.Named("cart.store"),
		listeners: make(map[int]Listener),
	}
	s.load()
	return s
}

func (s *Store) load() {
	raw, ok := s.storage.Get(storage.KeyCart)
	if !ok {
		return
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Warn("discarding malformed persisted cart", zap.Error(err))
		return
	}

	// Drop entries a buggy writer could have left behind. Quantity below 1
	// is not representable in this model.
	kept := entries[:0]
	for _, e := range entries {
		if e.ProductID != "" && e.Quantity >= 1 {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// Add inserts the product with quantity 1, or bumps the quantity when the
// product is already in the cart. ProductID is the uniqueness key.
func (s *Store) Add(productID string) error {
	if productID == "" {
		return ErrEmptyProductID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			return s.mutateLocked(func() {
				s.entries[i].Quantity++
			})
		}
	}

	return s.mutateLocked(func() {
		s.entries = append(s.entries, Entry{ProductID: productID, Quantity: 1})
	})
}

// Increase bumps the quantity of an existing entry by one.
func (s *Store) Increase(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			return s.mutateLocked(func() {
				s.entries[i].Quantity++
			})
		}
	}
	return ErrNotInCart
}

// Decrease lowers the quantity by one. At quantity 1 it removes the entry
// outright; a persisted quantity of 0 must never exist.
func (s *Store) Decrease(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			if s.entries[i].Quantity == 1 {
				return s.removeLocked(productID)
			}
			return s.mutateLocked(func() {
				s.entries[i].Quantity--
			})
		}
	}
	return ErrNotInCart
}

// Remove deletes the entry for productID.
func (s *Store) Remove(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(productID)
}

func (s *Store) removeLocked(productID string) error {
	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			return s.mutateLocked(func() {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
			})
		}
	}
	return ErrNotInCart
}

// Clear empties the cart. Called after a successful purchase.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil
	}
	return s.mutateLocked(func() {
		s.entries = nil
	})
}

// mutateLocked applies apply, persists the full set, and rolls the
// in-memory state back when the write fails so memory and disk never
// diverge. Listeners fire only after a durable write.
func (s *Store) mutateLocked(apply func()) error {
	prev := s.snapshotLocked()
	apply()

	raw, err := json.Marshal(s.snapshotLocked())
	if err == nil {
		err = s.storage.Set(storage.KeyCart, raw)
	}
	if err != nil {
		s.entries = prev
		s.logger.Error("cart persist failed, mutation rolled back", zap.Error(err))
		return ErrPersistFailed.WithCause(err)
	}

	s.notifyLocked()
	return nil
}

// Entries returns a copy of the current cart in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Quantity reports the quantity for productID, zero when absent.
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ProductID == productID {
			return e.Quantity
		}
	}
	return 0
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Subscribe registers a change listener and returns its unsubscribe
// function. This is the trigger point for downstream recomputation: the
// catalog resolver re-resolves off these events instead of any view-layer
// refresh cycle. Listeners run synchronously under the store lock and must
// not call back into the store; hand the snapshot off to a channel or
// goroutine for anything heavier than bookkeeping.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notifyLocked() {
	snapshot := s.snapshotLocked()
	for _, fn := range s.listeners {
		fn(snapshot)
	}
}

func (s *Store) snapshotLocked() []Entry {
	if s.entries == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

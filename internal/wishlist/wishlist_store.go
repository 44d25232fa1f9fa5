// Package wishlist keeps an optimistic local view of server-authoritative
// wishlist membership. Toggle is a command: flip locally, fire the request,
// and explicitly invert the flip when the request fails.
package wishlist

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/cart"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
)

//go:generate mockgen -source=wishlist_store.go -destination=../mock/wishlist/wishlist_api_mock.go -package=mock

// API is the slice of the REST gateway the store consumes.
type API interface {
	AddToWishlist(ctx context.Context, userID, productID string) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
	InWishlist(ctx context.Context, productID string) (bool, error)
	Wishlist(ctx context.Context) ([]string, error)
}

type Store struct {
	mu       sync.Mutex
	flags    map[string]bool
	api      API
	resolver *catalog.Resolver
	logger   *zap.Logger
}

func NewStore(api API, resolver *catalog.Resolver, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		flags:    make(map[string]bool),
		api:      api,
		resolver: resolver,
		logger:   logger.Named("wishlist.store"),
	}
}

// Contains returns the local optimistic flag. It only reflects products
// this store has refreshed or toggled.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[productID]
}

// Refresh reconciles one product's flag with the server, which is the
// source of truth for membership.
func (s *Store) Refresh(ctx context.Context, productID string) (bool, error) {
	in, err := s.api.InWishlist(ctx, productID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.flags[productID] = in
	s.mu.Unlock()
	return in, nil
}

// Toggle flips membership optimistically, then issues the matching add or
// remove. A failed request rolls the flip back so local state converges on
// the server's instead of drifting.
func (s *Store) Toggle(ctx context.Context, userID, productID string) (added bool, err error) {
	s.mu.Lock()
	was := s.flags[productID]
	s.flags[productID] = !was
	s.mu.Unlock()

	if was {
		err = s.api.RemoveFromWishlist(ctx, userID, productID)
	} else {
		err = s.api.AddToWishlist(ctx, userID, productID)
	}

	if err != nil {
		s.mu.Lock()
		s.flags[productID] = was
		s.mu.Unlock()
		s.logger.Warn("wishlist toggle rolled back",
			zap.String("product_id", productID),
			zap.Bool("was_present", was),
			zap.Error(err),
		)
		return was, err
	}

	return !was, nil
}

// List fetches the wishlist's product ids and resolves them to snapshots
// fail-open, the same policy as the cart view.
func (s *Store) List(ctx context.Context) ([]catalog.ResolvedItem, error) {
	ids, err := s.api.Wishlist(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, id := range ids {
		s.flags[id] = true
	}
	s.mu.Unlock()

	entries := make([]cart.Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, cart.Entry{ProductID: id, Quantity: 1})
	}
	return s.resolver.Resolve(ctx, entries)
}

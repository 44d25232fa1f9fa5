// Package devapi is an in-memory stand-in for the storefront backend: the
// REST surface the gateway consumes plus the feed's server side. It exists
// so the engine can be run and integration-tested without the real
// platform; nothing here is a persistence design.
package devapi

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/feed"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/apperror"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/review"
)

const (
	ordersPageSize  = 4
	listingPageSize = 10
)

var (
	errProductNotFound = apperror.New(apperror.CodeNotFound, "Product not found", http.StatusNotFound)
	errOrderNotFound   = apperror.New(apperror.CodeNotFound, "Order not found", http.StatusNotFound)
	errOutOfStock      = apperror.New(apperror.CodeConflict, "Not enough stock", http.StatusConflict)
	errBadTransition   = apperror.New(apperror.CodeConflict, "Status transition not allowed", http.StatusConflict)
)

type State struct {
	mu        sync.RWMutex
	products  map[string]catalog.Snapshot
	orders    map[string]order.Order
	wishlists map[string]map[string]bool
	reviews   map[string][]review.Review
}

func NewState() *State {
	return &State{
		products:  make(map[string]catalog.Snapshot),
		orders:    make(map[string]order.Order),
		wishlists: make(map[string]map[string]bool),
		reviews:   make(map[string][]review.Review),
	}
}

func (s *State) PutProduct(p catalog.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *State) Product(id string) (catalog.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.Snapshot{}, errProductNotFound
	}
	return p, nil
}

// AddOrder stores the order and decrements stock for every line, the same
// bulk adjustment the original backend performed.
func (s *State) AddOrder(o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range o.Items {
		p, ok := s.products[item.ProductID]
		if !ok {
			return order.Order{}, errProductNotFound
		}
		if p.Stock < item.Quantity {
			return order.Order{}, errOutOfStock
		}
	}

	for _, item := range o.Items {
		p := s.products[item.ProductID]
		p.Stock -= item.Quantity
		s.products[item.ProductID] = p
	}

	o.Status = order.StatusConfirmed
	s.orders[o.ID] = o
	return o, nil
}

func (s *State) Order(id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, errOrderNotFound
	}
	return o, nil
}

// SetStatus applies a transition, enforcing the same machine the client
// does. Moving into Cancelled restores the stock the order had claimed.
func (s *State) SetStatus(id string, next order.Status) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, errOrderNotFound
	}
	if !o.Status.CanTransition(next) {
		return order.Order{}, errBadTransition
	}

	if next == order.StatusCancelled {
		for _, item := range o.Items {
			if p, ok := s.products[item.ProductID]; ok {
				p.Stock += item.Quantity
				s.products[item.ProductID] = p
			}
		}
	}

	o.Status = next
	s.orders[id] = o
	return o, nil
}

// UserOrders pages a user's orders, newest first.
func (s *State) UserOrders(userID string, page int) ([]order.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mine []order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sortOrders(mine)

	start := (page - 1) * ordersPageSize
	if start >= len(mine) {
		return nil, false
	}
	end := start + ordersPageSize
	hasNext := end < len(mine)
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], hasNext
}

// Listing searches all orders by id or email substring and pages the
// result; the payload echoes the query so clients can discard stale pages.
func (s *State) Listing(q feed.Query) feed.ListingPage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(q.SearchTerm)

	var matched []order.Order
	for _, o := range s.orders {
		if term == "" ||
			strings.Contains(strings.ToLower(o.ID), term) ||
			strings.Contains(strings.ToLower(o.Email), term) {
			matched = append(matched, o)
		}
	}
	sortOrders(matched)

	totalPages := (len(matched) + listingPageSize - 1) / listingPageSize

	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * listingPageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + listingPageSize
	if end > len(matched) {
		end = len(matched)
	}

	return feed.ListingPage{
		Orders:     matched[start:end],
		TotalPages: totalPages,
		Query:      q,
	}
}

func (s *State) AddToWishlist(userID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wishlists[userID] == nil {
		s.wishlists[userID] = make(map[string]bool)
	}
	// Idempotent set membership; re-adding is a no-op.
	s.wishlists[userID][productID] = true
}

func (s *State) RemoveFromWishlist(userID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wishlists[userID], productID)
}

func (s *State) InWishlist(userID, productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wishlists[userID][productID]
}

func (s *State) Wishlist(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.wishlists[userID]))
	for id := range s.wishlists[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *State) AddReview(r review.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.ProductID] = append(s.reviews[r.ProductID], r)
}

// HasPurchased reports whether any of the user's orders contains the
// product.
func (s *State) HasPurchased(userID, productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.UserID != userID {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true
			}
		}
	}
	return false
}

func sortOrders(orders []order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Date.Equal(orders[j].Date) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].Date.After(orders[j].Date)
	})
}

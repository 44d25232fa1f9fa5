// Package feed is the push channel for order state: a client subscribes to
// a scope (one order, or the admin order listing), emits the matching
// command, and receives whole-value replacements until its context ends.
// Delivery is at least once; every event replaces the previous value, so a
// duplicate is harmless and ordering is by arrival.
package feed

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	orderpkg "github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
)

// Event and command names shared with the server side of the channel.
const (
	CommandGetOrderDetails = "get_order_details"
	CommandGetOrders       = "get_orders"

	EventOrderDetails = "order_details"
	EventOrderUpdated = "order_updated"
	EventOrders       = "orders"
)

// Event is one named payload arriving from the transport.
type Event struct {
	Name    string
	Payload []byte
}

// Transport is the underlying pub/sub channel. Listen delivers events for
// the named subjects until ctx ends, then closes the channel; teardown is
// tied to the ctx, never to a manual unsubscribe call.
type Transport interface {
	Emit(ctx context.Context, command string, payload any) error
	Listen(ctx context.Context, events ...string) (<-chan Event, error)
}

type Client struct {
	transport Transport
	logger    *zap.Logger
}

func NewClient(t Transport, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		transport: t,
		logger:    logger.Named("feed.client"),
	}
}

type orderDetailsCommand struct {
	UserID  string `json:"userId"`
	OrderID string `json:"orderId"`
}

// WatchOrder subscribes to a single order: the initial snapshot answers the
// emitted command, and every later push replaces the value wholesale.
// Events for other orders that share the channel are discarded here. The
// returned channel closes when ctx is cancelled.
func (c *Client) WatchOrder(ctx context.Context, userID, orderID string) (<-chan orderpkg.Order, error) {
	if orderID == "" {
		return nil, ErrEmptyScope
	}

	events, err := c.transport.Listen(ctx, EventOrderDetails, EventOrderUpdated)
	if err != nil {
		return nil, err
	}

	if err := c.transport.Emit(ctx, CommandGetOrderDetails, orderDetailsCommand{
		UserID:  userID,
		OrderID: orderID,
	}); err != nil {
		return nil, err
	}

	out := make(chan orderpkg.Order)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}

				var o orderpkg.Order
				if err := json.Unmarshal(ev.Payload, &o); err != nil {
					c.logger.Warn("dropping undecodable feed event",
						zap.String("event", ev.Name),
						zap.Error(err),
					)
					continue
				}
				if o.ID != orderID {
					continue
				}

				select {
				case out <- o:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Query scopes the admin listing: a search term plus a page number.
type Query struct {
	SearchTerm string `json:"searchTerm"`
	Page       int    `json:"page"`
}

// ListingPage is one full replacement of the admin order listing.
type ListingPage struct {
	Orders     []orderpkg.Order `json:"orders"`
	TotalPages int              `json:"total_pages"`
	Query      Query            `json:"query"`
}

// Listing is a live admin order listing. Every SetQuery re-emits the
// command; results that answer a superseded query are discarded, so a page
// for an old search term can never overwrite the new one.
type Listing struct {
	mu      sync.Mutex
	current Query

	client *Client
	ctx    context.Context
	out    chan ListingPage
}

// WatchListing opens the admin listing subscription. Call SetQuery to
// drive it; the first SetQuery requests the first page. The updates
// channel closes when ctx is cancelled.
func (c *Client) WatchListing(ctx context.Context) (*Listing, error) {
	events, err := c.transport.Listen(ctx, EventOrders)
	if err != nil {
		return nil, err
	}

	l := &Listing{
		client: c,
		ctx:    ctx,
		out:    make(chan ListingPage),
	}

	go func() {
		defer close(l.out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}

				var page ListingPage
				if err := json.Unmarshal(ev.Payload, &page); err != nil {
					c.logger.Warn("dropping undecodable listing event", zap.Error(err))
					continue
				}

				l.mu.Lock()
				stale := page.Query != l.current
				l.mu.Unlock()
				if stale {
					c.logger.Debug("discarding listing page for superseded query",
						zap.String("search", page.Query.SearchTerm),
						zap.Int("page", page.Query.Page),
					)
					continue
				}

				select {
				case l.out <- page:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return l, nil
}

// SetQuery changes the listing scope and re-emits the command. Calling it
// with every keystroke is expected; the server answers each emission and
// stale answers are dropped on arrival.
func (l *Listing) SetQuery(searchTerm string, page int) error {
	if page < 1 {
		page = 1
	}
	q := Query{SearchTerm: searchTerm, Page: page}

	l.mu.Lock()
	l.current = q
	l.mu.Unlock()

	return l.client.transport.Emit(l.ctx, CommandGetOrders, q)
}

// Updates delivers full listing replacements for the current query.
func (l *Listing) Updates() <-chan ListingPage {
	return l.out
}

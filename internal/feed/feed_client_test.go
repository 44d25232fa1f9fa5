package feed_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/feed"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
)

// fakeTransport is an in-process Transport: Emit records commands, and the
// test pushes events by hand.
type fakeTransport struct {
	mu       sync.Mutex
	commands []string
	incoming chan feed.Event
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{incoming: make(chan feed.Event, 16)}
}

func (f *fakeTransport) Emit(ctx context.Context, command string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command)
	return nil
}

func (f *fakeTransport) Listen(ctx context.Context, events ...string) (<-chan feed.Event, error) {
	wanted := make(map[string]struct{}, len(events))
	for _, e := range events {
		wanted[e] = struct{}{}
	}

	out := make(chan feed.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-f.incoming:
				if _, ok := wanted[ev.Name]; !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *fakeTransport) push(t *testing.T, name string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	f.incoming <- feed.Event{Name: name, Payload: raw}
}

func (f *fakeTransport) emitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

func recvOrder(t *testing.T, ch <-chan order.Order) order.Order {
	t.Helper()

	select {
	case o, ok := <-ch:
		require.True(t, ok, "channel closed early")
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("no order update arrived")
		return order.Order{}
	}
}

func recvPage(t *testing.T, ch <-chan feed.ListingPage) feed.ListingPage {
	t.Helper()

	select {
	case p, ok := <-ch:
		require.True(t, ok, "channel closed early")
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("no listing page arrived")
		return feed.ListingPage{}
	}
}

func TestClient_WatchOrder(t *testing.T) {
	// =========================================================
	t.Run("snapshot_then_updates_replace_wholesale", func(t *testing.T) {
		transport := newFakeTransport()
		c := feed.NewClient(transport, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		updates, err := c.WatchOrder(ctx, "u-1", "o-1")
		require.NoError(t, err)
		assert.Equal(t, []string{feed.CommandGetOrderDetails}, transport.emitted())

		transport.push(t, feed.EventOrderDetails, order.Order{ID: "o-1", Status: order.StatusConfirmed})
		first := recvOrder(t, updates)
		assert.Equal(t, order.StatusConfirmed, first.Status)

		transport.push(t, feed.EventOrderUpdated, order.Order{ID: "o-1", Status: order.StatusProcessed})
		second := recvOrder(t, updates)
		assert.Equal(t, order.StatusProcessed, second.Status)
	})

	// =========================================================
	t.Run("updates_for_other_orders_discarded", func(t *testing.T) {
		transport := newFakeTransport()
		c := feed.NewClient(transport, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		updates, err := c.WatchOrder(ctx, "u-1", "o-1")
		require.NoError(t, err)

		transport.push(t, feed.EventOrderUpdated, order.Order{ID: "o-2", Status: order.StatusFulfilled})
		transport.push(t, feed.EventOrderUpdated, order.Order{ID: "o-1", Status: order.StatusProcessed})

		got := recvOrder(t, updates)
		assert.Equal(t, "o-1", got.ID)
	})

	// =========================================================
	t.Run("channel_closes_with_context", func(t *testing.T) {
		transport := newFakeTransport()
		c := feed.NewClient(transport, nil)

		ctx, cancel := context.WithCancel(context.Background())
		updates, err := c.WatchOrder(ctx, "u-1", "o-1")
		require.NoError(t, err)

		cancel()
		select {
		case _, ok := <-updates:
			assert.False(t, ok)
		case <-time.After(5 * time.Second):
			t.Fatal("watch channel did not close")
		}
	})

	// =========================================================
	t.Run("empty_order_id_rejected", func(t *testing.T) {
		c := feed.NewClient(newFakeTransport(), nil)

		_, err := c.WatchOrder(context.Background(), "u-1", "")
		assert.ErrorIs(t, err, feed.ErrEmptyScope)
	})
}

func TestClient_WatchListing(t *testing.T) {
	// =========================================================
	t.Run("pages_for_current_query_delivered", func(t *testing.T) {
		transport := newFakeTransport()
		c := feed.NewClient(transport, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		listing, err := c.WatchListing(ctx)
		require.NoError(t, err)
		require.NoError(t, listing.SetQuery("jane", 1))

		transport.push(t, feed.EventOrders, feed.ListingPage{
			Orders:     []order.Order{{ID: "o-1"}},
			TotalPages: 3,
			Query:      feed.Query{SearchTerm: "jane", Page: 1},
		})

		page := recvPage(t, listing.Updates())
		assert.Len(t, page.Orders, 1)
		assert.Equal(t, 3, page.TotalPages)
	})

	// =========================================================
	t.Run("stale_query_pages_discarded", func(t *testing.T) {
		transport := newFakeTransport()
		c := feed.NewClient(transport, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		listing, err := c.WatchListing(ctx)
		require.NoError(t, err)

		require.NoError(t, listing.SetQuery("jane", 1))
		require.NoError(t, listing.SetQuery("janet", 1))

		// The answer to the superseded query arrives after the newer one was
		// issued; it must never surface.
		transport.push(t, feed.EventOrders, feed.ListingPage{
			Orders: []order.Order{{ID: "stale"}},
			Query:  feed.Query{SearchTerm: "jane", Page: 1},
		})
		transport.push(t, feed.EventOrders, feed.ListingPage{
			Orders: []order.Order{{ID: "fresh"}},
			Query:  feed.Query{SearchTerm: "janet", Page: 1},
		})

		page := recvPage(t, listing.Updates())
		require.Len(t, page.Orders, 1)
		assert.Equal(t, "fresh", page.Orders[0].ID)
	})

	// =========================================================
	t.Run("page_below_one_clamped", func(t *testing.T) {
		transport := newFakeTransport()
		c := feed.NewClient(transport, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		listing, err := c.WatchListing(ctx)
		require.NoError(t, err)
		require.NoError(t, listing.SetQuery("", 0))

		transport.push(t, feed.EventOrders, feed.ListingPage{
			Query: feed.Query{SearchTerm: "", Page: 1},
		})
		page := recvPage(t, listing.Updates())
		assert.Equal(t, 1, page.Query.Page)
	})
}

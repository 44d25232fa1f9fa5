package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/cart"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
	orderMock "github.com/thatmissedsemicolon/Ecommerce-Application/internal/mock/order"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/storage"
)

func newManager(t *testing.T, ctrl *gomock.Controller) (*order.Manager, *orderMock.MockAPI, *orderMock.MockResolver, *cart.Store) {
	t.Helper()

	api := orderMock.NewMockAPI(ctrl)
	resolver := orderMock.NewMockResolver(ctrl)
	cartStore := cart.NewStore(storage.NewMemory(), nil)

	m := order.NewManager(order.Deps{
		API:      api,
		Cart:     cartStore,
		Resolver: resolver,
	})
	return m, api, resolver, cartStore
}

func resolvedItem(id string, price string, discount string, qty int) catalog.ResolvedItem {
	return catalog.ResolvedItem{
		Snapshot: catalog.Snapshot{
			ID:                 id,
			Price:              decimal.RequireFromString(price),
			DiscountPercentage: decimal.RequireFromString(discount),
		},
		Quantity: qty,
	}
}

func TestManager_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := order.User{ID: "u-1", Email: "jane@example.com"}

	// =========================================================
	t.Run("success_freezes_total_and_clears_cart", func(t *testing.T) {
		m, api, resolver, cartStore := newManager(t, ctrl)
		require.NoError(t, cartStore.Add("p-1001"))
		require.NoError(t, cartStore.Increase("p-1001"))
		require.NoError(t, cartStore.Increase("p-1001"))

		resolver.EXPECT().
			Resolve(gomock.Any(), []cart.Entry{{ProductID: "p-1001", Quantity: 3}}).
			Return([]catalog.ResolvedItem{resolvedItem("p-1001", "20", "25", 3)}, nil)

		var sent order.Order
		api.EXPECT().
			AddOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, o order.Order) (order.Order, error) {
				sent = o
				return o, nil
			})

		placed, err := m.Submit(ctx, user)
		require.NoError(t, err)

		// 3 * (20 * 0.75) = 45.00
		assert.Equal(t, "45.00", placed.Total.StringFixed(2))
		assert.Equal(t, order.StatusConfirmed, placed.Status)
		assert.Equal(t, "u-1", placed.UserID)
		assert.Equal(t, "jane@example.com", placed.Email)
		assert.NotEmpty(t, sent.ID)
		assert.False(t, sent.Date.IsZero())
		assert.Equal(t, []cart.Entry{{ProductID: "p-1001", Quantity: 3}}, sent.Items)

		assert.Equal(t, 0, cartStore.Len())
	})

	// =========================================================
	t.Run("empty_cart_rejected_before_any_call", func(t *testing.T) {
		m, _, _, _ := newManager(t, ctrl)

		_, err := m.Submit(ctx, user)
		assert.ErrorIs(t, err, order.ErrCartEmpty)
	})

	// =========================================================
	t.Run("invalid_user_rejected", func(t *testing.T) {
		m, _, _, cartStore := newManager(t, ctrl)
		require.NoError(t, cartStore.Add("p-1001"))

		_, err := m.Submit(ctx, order.User{ID: "u-1", Email: "not-an-email"})
		assert.ErrorIs(t, err, order.ErrInvalidUser)

		_, err = m.Submit(ctx, order.User{Email: "jane@example.com"})
		assert.ErrorIs(t, err, order.ErrInvalidUser)
	})

	// =========================================================
	t.Run("partial_resolution_submits_resolved_items_only", func(t *testing.T) {
		m, api, resolver, cartStore := newManager(t, ctrl)
		require.NoError(t, cartStore.Add("p-1001"))
		require.NoError(t, cartStore.Add("gone"))

		failed := catalog.ResolvedItem{Quantity: 1, Err: errors.New("product gone: not found")}
		resolver.EXPECT().
			Resolve(gomock.Any(), gomock.Any()).
			Return([]catalog.ResolvedItem{resolvedItem("p-1001", "100", "0", 1), failed}, failed.Err)

		var sent order.Order
		api.EXPECT().
			AddOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, o order.Order) (order.Order, error) {
				sent = o
				return o, nil
			})

		placed, err := m.Submit(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, "100.00", placed.Total.StringFixed(2))

		// The unresolved entry is dropped, so the server never ships or
		// decrements stock for an item the total does not cover.
		assert.Equal(t, []cart.Entry{{ProductID: "p-1001", Quantity: 1}}, sent.Items)
	})

	// =========================================================
	t.Run("nothing_resolved_aborts_submission", func(t *testing.T) {
		m, _, resolver, cartStore := newManager(t, ctrl)
		require.NoError(t, cartStore.Add("gone"))

		failed := catalog.ResolvedItem{Quantity: 1, Err: errors.New("product gone: not found")}
		resolver.EXPECT().
			Resolve(gomock.Any(), gomock.Any()).
			Return([]catalog.ResolvedItem{failed}, failed.Err)

		_, err := m.Submit(ctx, user)
		assert.ErrorIs(t, err, order.ErrNothingResolved)
		assert.Equal(t, 1, cartStore.Len())
	})

	// =========================================================
	t.Run("api_failure_leaves_cart_intact", func(t *testing.T) {
		m, api, resolver, cartStore := newManager(t, ctrl)
		require.NoError(t, cartStore.Add("p-1001"))

		resolver.EXPECT().
			Resolve(gomock.Any(), gomock.Any()).
			Return([]catalog.ResolvedItem{resolvedItem("p-1001", "100", "0", 1)}, nil)

		api.EXPECT().
			AddOrder(gomock.Any(), gomock.Any()).
			Return(order.Order{}, order.ErrOrderFailed)

		_, err := m.Submit(ctx, user)
		assert.ErrorIs(t, err, order.ErrOrderFailed)
		assert.Equal(t, 1, cartStore.Len())
	})
}

func TestManager_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	// =========================================================
	t.Run("confirmed_order_cancels", func(t *testing.T) {
		m, api, _, _ := newManager(t, ctrl)

		api.EXPECT().OrderByID(gomock.Any(), "o-1").
			Return(order.Order{ID: "o-1", Status: order.StatusConfirmed}, nil)
		api.EXPECT().CancelOrder(gomock.Any(), "o-1").Return(nil)

		assert.NoError(t, m.Cancel(ctx, "o-1"))
	})

	// =========================================================
	t.Run("non_confirmed_order_rejected_locally", func(t *testing.T) {
		m, api, _, _ := newManager(t, ctrl)

		for _, status := range []order.Status{
			order.StatusProcessed,
			order.StatusFulfilled,
			order.StatusCancelled,
		} {
			api.EXPECT().OrderByID(gomock.Any(), "o-1").
				Return(order.Order{ID: "o-1", Status: status}, nil)

			assert.ErrorIs(t, m.Cancel(ctx, "o-1"), order.ErrCannotCancel)
		}
	})

	// =========================================================
	t.Run("empty_order_id_rejected", func(t *testing.T) {
		m, _, _, _ := newManager(t, ctrl)
		assert.ErrorIs(t, m.Cancel(ctx, ""), order.ErrInvalidOrderID)
	})
}

func TestManager_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	// =========================================================
	t.Run("legal_transition_is_requested", func(t *testing.T) {
		m, api, _, _ := newManager(t, ctrl)

		api.EXPECT().OrderByID(gomock.Any(), "o-1").
			Return(order.Order{ID: "o-1", Status: order.StatusConfirmed}, nil)
		api.EXPECT().UpdateOrder(gomock.Any(), "o-1", order.StatusProcessed).Return(nil)

		assert.NoError(t, m.UpdateStatus(ctx, "o-1", order.StatusProcessed))
	})

	// =========================================================
	t.Run("processed_order_can_be_cancelled", func(t *testing.T) {
		m, api, _, _ := newManager(t, ctrl)

		api.EXPECT().OrderByID(gomock.Any(), "o-1").
			Return(order.Order{ID: "o-1", Status: order.StatusProcessed}, nil)
		api.EXPECT().UpdateOrder(gomock.Any(), "o-1", order.StatusCancelled).Return(nil)

		assert.NoError(t, m.UpdateStatus(ctx, "o-1", order.StatusCancelled))
	})

	// =========================================================
	t.Run("non_admin_target_rejected_without_fetch", func(t *testing.T) {
		m, _, _, _ := newManager(t, ctrl)

		assert.ErrorIs(t, m.UpdateStatus(ctx, "o-1", order.StatusConfirmed), order.ErrInvalidStatusTransition)
		assert.ErrorIs(t, m.UpdateStatus(ctx, "o-1", order.Status("Shipped")), order.ErrInvalidStatusTransition)
	})

	// =========================================================
	t.Run("same_status_rejected", func(t *testing.T) {
		m, api, _, _ := newManager(t, ctrl)

		api.EXPECT().OrderByID(gomock.Any(), "o-1").
			Return(order.Order{ID: "o-1", Status: order.StatusProcessed}, nil)

		assert.ErrorIs(t, m.UpdateStatus(ctx, "o-1", order.StatusProcessed), order.ErrInvalidStatusTransition)
	})

	// =========================================================
	t.Run("illegal_edge_rejected", func(t *testing.T) {
		m, api, _, _ := newManager(t, ctrl)

		api.EXPECT().OrderByID(gomock.Any(), "o-1").
			Return(order.Order{ID: "o-1", Status: order.StatusFulfilled}, nil)

		assert.ErrorIs(t, m.UpdateStatus(ctx, "o-1", order.StatusCancelled), order.ErrInvalidStatusTransition)
	})
}

func TestManager_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// =========================================================
	t.Run("page_below_one_clamped", func(t *testing.T) {
		m, api, _, _ := newManager(t, ctrl)

		api.EXPECT().Orders(gomock.Any(), 1).Return(order.Page{}, nil)

		_, err := m.List(context.Background(), 0)
		assert.NoError(t, err)
	})
}

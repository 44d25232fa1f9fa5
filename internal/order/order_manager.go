// Package order owns the client side of the order lifecycle: building and
// submitting an order from the resolved cart, and requesting cancel/status
// transitions the server is free to reject again.
package order

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/cart"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
)

//go:generate mockgen -source=order_manager.go -destination=../mock/order/order_api_mock.go -package=mock

// API is the slice of the REST gateway the manager consumes.
type API interface {
	AddOrder(ctx context.Context, o Order) (Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	UpdateOrder(ctx context.Context, orderID string, status Status) error
	OrderByID(ctx context.Context, orderID string) (Order, error)
	Orders(ctx context.Context, page int) (Page, error)
}

// Resolver joins cart entries with live product data; satisfied by
// *catalog.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, entries []cart.Entry) ([]catalog.ResolvedItem, error)
}

type Manager struct {
	api      API
	cart     *cart.Store
	resolver Resolver
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

type Deps struct {
	API      API
	Cart     *cart.Store
	Resolver Resolver
	Logger   *zap.Logger
}

func NewManager(deps Deps) *Manager {
	if deps.API == nil {
		panic("order api cannot be nil")
	}
	if deps.Cart == nil {
		panic("cart store cannot be nil")
	}
	if deps.Resolver == nil {
		panic("resolver cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Manager{
		api:      deps.API,
		cart:     deps.Cart,
		resolver: deps.Resolver,
		validate: validator.New(),
		logger:   deps.Logger.Named("order.manager"),
		now:      time.Now,
	}
}

// Submit resolves the current cart, freezes the total, and posts the order
// with a fresh id and Confirmed status. On success the local cart is
// cleared; on any failure the cart is left untouched so the user can retry.
func (m *Manager) Submit(ctx context.Context, user User) (Order, error) {
	if err := m.validate.Struct(user); err != nil {
		return Order{}, ErrInvalidUser.WithCause(err)
	}

	logger := m.logger.With(zap.String("user_id", user.ID))

	entries := m.cart.Entries()
	if len(entries) == 0 {
		return Order{}, ErrCartEmpty
	}

	items, rerr := m.resolver.Resolve(ctx, entries)
	if ctx.Err() != nil {
		return Order{}, ctx.Err()
	}

	resolved := 0
	for _, it := range items {
		if it.Err == nil {
			resolved++
		}
	}
	if resolved == 0 {
		logger.Error("cart resolution produced no usable items", zap.Error(rerr))
		return Order{}, ErrNothingResolved.WithCause(rerr)
	}
	if rerr != nil {
		// Fail-open: entries that failed to resolve are dropped so the
		// submitted items match the items the total was priced over.
		kept := make([]cart.Entry, 0, resolved)
		for i := range items {
			if items[i].Err == nil {
				kept = append(kept, entries[i])
			}
		}
		entries = kept
		logger.Warn("submitting with partially resolved cart",
			zap.Int("dropped", len(items)-resolved),
			zap.Error(rerr),
		)
	}

	o := Order{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Email:  user.Email,
		Items:  entries,
		Status: StatusConfirmed,
		Total:  catalog.Total(items),
		Date:   m.now(),
	}

	logger = logger.With(zap.String("order_id", o.ID))

	placed, err := m.api.AddOrder(ctx, o)
	if err != nil {
		logger.Error("order submission failed, cart left intact", zap.Error(err))
		return Order{}, err
	}

	if err := m.cart.Clear(); err != nil {
		// The order exists server-side; a stale local cart is the lesser
		// problem and the next mutation will overwrite it.
		logger.Warn("failed to clear cart after purchase", zap.Error(err))
	}

	logger.Info("order placed",
		zap.String("status", string(placed.Status)),
		zap.String("total", placed.Total.StringFixed(2)),
	)
	return placed, nil
}

// Cancel requests cancellation. Allowed only while the order is still
// Confirmed; the check here mirrors, not replaces, the server's own.
func (m *Manager) Cancel(ctx context.Context, orderID string) error {
	if orderID == "" {
		return ErrInvalidOrderID
	}

	o, err := m.api.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if o.Status != StatusConfirmed {
		return ErrCannotCancel
	}

	if err := m.api.CancelOrder(ctx, orderID); err != nil {
		return err
	}

	m.logger.Info("order cancelled", zap.String("order_id", orderID))
	return nil
}

// UpdateStatus is the administrative transition path. The target must be
// one of Processed/Fulfilled/Cancelled, differ from the current status, and
// be a legal edge of the machine; anything else is rejected before a
// request is made.
func (m *Manager) UpdateStatus(ctx context.Context, orderID string, next Status) error {
	if orderID == "" {
		return ErrInvalidOrderID
	}
	if _, ok := adminTargets[next]; !ok {
		return ErrInvalidStatusTransition
	}

	o, err := m.api.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if next == o.Status || !o.Status.CanTransition(next) {
		return ErrInvalidStatusTransition
	}

	if err := m.api.UpdateOrder(ctx, orderID, next); err != nil {
		return err
	}

	m.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)),
	)
	return nil
}

// Detail fetches one order; the polling complement to the live feed.
func (m *Manager) Detail(ctx context.Context, orderID string) (Order, error) {
	if orderID == "" {
		return Order{}, ErrInvalidOrderID
	}
	return m.api.OrderByID(ctx, orderID)
}

// List fetches one page of the caller's orders, newest first.
func (m *Manager) List(ctx context.Context, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	return m.api.Orders(ctx, page)
}

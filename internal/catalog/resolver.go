// Package catalog resolves locally-held cart entries against live product
// data. Lookups run concurrently, results come back in cart order, and a
// single failed product never takes the rest of the cart down.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/cart"
)

//go:generate mockgen -source=resolver.go -destination=../mock/catalog/fetcher_mock.go -package=mock
type Fetcher interface {
	ProductByID(ctx context.Context, productID string) (Snapshot, error)
}

type Resolver struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func NewResolver(f Fetcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		fetcher: f,
		logger:  logger.Named("catalog.resolver"),
	}
}

// Resolve fetches one snapshot per entry concurrently and merges quantities
// back in the entries' order. Failed lookups yield a slot with Err set and
// the joined error is returned alongside the partial list; callers decide
// whether a partial cart view is acceptable. A cancelled ctx aborts
// outstanding fetches and their results are discarded.
func (r *Resolver) Resolve(ctx context.Context, entries []cart.Entry) ([]ResolvedItem, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	items := make([]ResolvedItem, len(entries))

	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e cart.Entry) {
			defer wg.Done()

			snap, err := r.fetcher.ProductByID(ctx, e.ProductID)
			if err != nil {
				r.logger.Warn("product lookup failed",
					zap.String("product_id", e.ProductID),
					zap.Error(err),
				)
				items[i] = ResolvedItem{
					Quantity: e.Quantity,
					Err:      fmt.Errorf("product %s: %w", e.ProductID, err),
				}
				return
			}

			items[i] = ResolvedItem{
				Snapshot: snap,
				Quantity: e.Quantity,
			}
		}(i, e)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// The caller navigated away mid-flight; whatever arrived must not
		// be applied.
		return nil, err
	}

	var errs []error
	for i := range items {
		if items[i].Err != nil {
			errs = append(errs, items[i].Err)
		}
	}
	return items, errors.Join(errs...)
}

// Follow implements the reactive pipeline: it re-resolves on every cart
// mutation and on start, delivering each pass on the returned channel. A
// pass that is still in flight when the next mutation lands is superseded;
// its result is dropped rather than delivered out of order. The channel
// closes when ctx is cancelled.
func (r *Resolver) Follow(ctx context.Context, store *cart.Store) <-chan Result {
	out := make(chan Result)
	changes := make(chan []cart.Entry, 1)

	push := func(entries []cart.Entry) {
		// Coalesce: only the latest snapshot matters.
		select {
		case <-changes:
		default:
		}
		changes <- entries
	}

	unsubscribe := store.Subscribe(push)
	push(store.Entries())

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case entries := <-changes:
				items, err := r.Resolve(ctx, entries)
				if ctx.Err() != nil {
					return
				}
				if len(changes) > 0 {
					// A newer mutation landed while this pass was in
					// flight; its pass supersedes this one.
					continue
				}

				res := Result{
					Items:   items,
					Total:   Total(items),
					Entries: entries,
					Err:     err,
				}

				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/cart"
)

// Snapshot is the server-authoritative product record at fetch time. The
// client only ever reads it; price and discount are re-fetched on every
// resolution so a stale discount can never linger in a total.
type Snapshot struct {
	ID                 string          `json:"_id"`
	Title              string          `json:"title"`
	Brand              string          `json:"brand"`
	Category           string          `json:"category"`
	Thumbnail          string          `json:"thumbnail"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Stock              int             `json:"stock"`
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice computes price * (100 - discount%) / 100. Always derived,
// never stored.
func (s Snapshot) DiscountedPrice() decimal.Decimal {
	return s.Price.Mul(hundred.Sub(s.DiscountPercentage)).Div(hundred)
}

// ResolvedItem joins a cart entry with its current snapshot. When the
// per-product lookup failed, Err is set and the snapshot fields are zero;
// the item still occupies its slot so the list keeps cart order.
type ResolvedItem struct {
	Snapshot
	Quantity int
	Err      error
}

// LineTotal is the discounted price times quantity, zero for failed slots.
func (r ResolvedItem) LineTotal() decimal.Decimal {
	if r.Err != nil {
		return decimal.Zero
	}
	return r.DiscountedPrice().Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// Total sums line totals across successfully resolved items, rounded to
// cents. Failed slots contribute nothing (fail-open).
func Total(items []ResolvedItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total.Round(2)
}

// Result is one output of a reactive resolution pass.
type Result struct {
	Items   []ResolvedItem
	Total   decimal.Decimal
	Entries []cart.Entry
	Err     error
}

package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/cart"
)

// Order is an immutable-total purchase record. Total is frozen at
// submission time from the resolved cart and is never recomputed, so later
// price or discount changes cannot rewrite purchase history. Once
// submitted, status transitions belong to the server; the manager only
// requests them.
type Order struct {
	ID     string          `json:"_id"`
	UserID string          `json:"userId"`
	Email  string          `json:"email"`
	Items  []cart.Entry    `json:"items"`
	Status Status          `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Date   time.Time       `json:"date"`
}

// User identifies the purchaser at submission time.
type User struct {
	ID    string `json:"_id" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Page is one page of a paginated order listing, newest first.
type Page struct {
	Orders      []Order `json:"orders"`
	HasNextPage bool    `json:"hasNextPage"`
}

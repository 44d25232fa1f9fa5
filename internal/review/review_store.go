// Package review gates product reviews on purchase eligibility before the
// request ever leaves the client.
package review

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

//go:generate mockgen -source=review_store.go -destination=../mock/review/review_api_mock.go -package=mock

type Review struct {
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// API is the slice of the REST gateway the store consumes.
type API interface {
	AddReview(ctx context.Context, r Review) error
	HasPurchased(ctx context.Context, productID string) (bool, error)
}

type Store struct {
	api    API
	logger *zap.Logger
}

func NewStore(api API, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:    api,
		logger: logger.Named("review.store"),
	}
}

// Eligible reports whether the current user has an order containing the
// product; only purchasers may review.
func (s *Store) Eligible(ctx context.Context, productID string) (bool, error) {
	if productID == "" {
		return false, ErrInvalidReview
	}
	return s.api.HasPurchased(ctx, productID)
}

// Add validates locally, checks eligibility, then submits the review.
func (s *Store) Add(ctx context.Context, r Review) error {
	if r.ProductID == "" || r.Rating < 1 || r.Rating > 5 || strings.TrimSpace(r.Comment) == "" {
		return ErrInvalidReview
	}

	ok, err := s.api.HasPurchased(ctx, r.ProductID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotEligible
	}

	if err := s.api.AddReview(ctx, r); err != nil {
		return err
	}

	s.logger.Info("review submitted",
		zap.String("product_id", r.ProductID),
		zap.Int("rating", r.Rating),
	)
	return nil
}

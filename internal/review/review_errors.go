package review

import (
	"net/http"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/apperror"
)

var (
	ErrInvalidReview = apperror.New(
		apperror.CodeInvalidInput,
		"Review needs a product, a 1-5 rating and a comment",
		http.StatusBadRequest,
	)

	ErrNotEligible = apperror.New(
		apperror.CodeForbidden,
		"Only purchasers can review a product",
		http.StatusForbidden,
	)
)

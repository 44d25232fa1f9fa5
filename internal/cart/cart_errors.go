package cart

import (
	"net/http"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/apperror"
)

var (
	ErrEmptyProductID = apperror.New(
		apperror.CodeInvalidInput,
		"Product ID must not be empty",
		http.StatusBadRequest,
	)

	ErrNotInCart = apperror.New(
		apperror.CodeNotFound,
		"Product not in cart",
		http.StatusNotFound,
	)

	ErrPersistFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to persist cart",
		http.StatusInternalServerError,
	)
)

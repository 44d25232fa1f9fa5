package order

import (
	"net/http"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/apperror"
)

var (
	ErrCartEmpty = apperror.New(
		apperror.CodeInvalidInput,
		"Cart is empty",
		http.StatusBadRequest,
	)

	ErrNothingResolved = apperror.New(
		apperror.CodeInvalidInput,
		"No cart item could be resolved against the catalog",
		http.StatusBadRequest,
	)

	ErrInvalidUser = apperror.New(
		apperror.CodeInvalidInput,
		"Submitting user needs an ID and a valid email",
		http.StatusBadRequest,
	)

	ErrInvalidOrderID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid order ID",
		http.StatusBadRequest,
	)

	ErrOrderNotFound = apperror.New(
		apperror.CodeNotFound,
		"Order not found",
		http.StatusNotFound,
	)

	ErrCannotCancel = apperror.New(
		apperror.CodeConflict,
		"Only a confirmed order can be cancelled",
		http.StatusConflict,
	)

	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeConflict,
		"Requested status transition is not allowed",
		http.StatusConflict,
	)

	ErrOrderFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to process order",
		http.StatusInternalServerError,
	)
)

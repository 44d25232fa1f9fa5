package session

import (
	"net/http"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/apperror"
)

var (
	ErrNoToken = apperror.New(
		apperror.CodeUnauthorized,
		"No access token stored",
		http.StatusUnauthorized,
	)

	ErrMalformedToken = apperror.New(
		apperror.CodeUnauthorized,
		"Stored access token is malformed",
		http.StatusUnauthorized,
	)
)

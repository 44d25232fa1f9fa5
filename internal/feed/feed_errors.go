package feed

import (
	"net/http"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/apperror"
)

var ErrEmptyScope = apperror.New(
	apperror.CodeInvalidInput,
	"A feed subscription needs a non-empty scope",
	http.StatusBadRequest,
)

package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func ToHTTP(err error) *HTTPError {
	if err == nil {
		return &HTTPError{
			Status: http.StatusOK,
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "internal server error",
	}
}

// FromStatus classifies an HTTP status coming back from the API into a
// coded error. 401, 403 and 500 all mean the session is no longer
// trustworthy and map to SESSION_EXPIRED.
func FromStatus(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError:
		return New(CodeSessionExpired, message, status)
	case http.StatusBadRequest:
		return New(CodeInvalidInput, message, status)
	case http.StatusNotFound:
		return New(CodeNotFound, message, status)
	case http.StatusConflict:
		return New(CodeConflict, message, status)
	default:
		return New(CodeInternalError, message, status)
	}
}

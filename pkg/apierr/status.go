package apierr

import (
	"errors"
	"net/http"
)

// Sentinels returned by server usecases. Wrap them with context; handlers
// map them to a status with HTTPStatus.
var (
	ErrNotFound   = errors.New("not found")
	ErrInvalid    = errors.New("invalid request")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrUnverified = errors.New("invalid or expired token")
)

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnverified):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

package services

import (
	"errors"
	"net/http"

	beacon_errors "beacon-chat/pkg/errors"
)

// HTTPStatus maps service-layer sentinel errors onto HTTP status codes so
// handlers stay free of error-type switches.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, beacon_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, beacon_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, beacon_errors.ErrForbidden),
		errors.Is(err, beacon_errors.ErrNotParticipant),
		errors.Is(err, beacon_errors.ErrAccountInactive):
		return http.StatusForbidden
	case errors.Is(err, beacon_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, beacon_errors.ErrConflict),
		errors.Is(err, beacon_errors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, beacon_errors.ErrEditWindow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, beacon_errors.ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, beacon_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

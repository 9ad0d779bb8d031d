package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrMalformedRequest   = errors.New("malformed request")
	ErrVerificationFailed = errors.New("verification failed")
	ErrAmountMismatch     = errors.New("amount mismatch")
	ErrCurrencyMismatch   = errors.New("currency mismatch")
	ErrNotFound           = errors.New("not found")

	// ErrDuplicateOrder is returned by the store when the unique
	// transaction_id index rejects an insert. The reconciler resolves it
	// into an idempotent success, so it never reaches a handler.
	ErrDuplicateOrder = errors.New("duplicate order")
)

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"

	case errors.Is(err, ErrMalformedRequest):
		return "malformed_request"

	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"

	case errors.Is(err, ErrCurrencyMismatch):
		return "currency_mismatch"

	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrDuplicateOrder):
		return "duplicate"

	case errors.Is(err, context.DeadlineExceeded):
		return "upstream_timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, ErrMalformedRequest),
		errors.Is(err, ErrAmountMismatch),
		errors.Is(err, ErrCurrencyMismatch),
		errors.Is(err, ErrVerificationFailed):
		return http.StatusBadRequest

	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway

	case errors.Is(err, context.Canceled):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

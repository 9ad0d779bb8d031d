package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unauthenticated", ErrUnauthenticated, "unauthenticated"},
		{"malformed", ErrMalformedRequest, "malformed_request"},
		{"amount", ErrAmountMismatch, "amount_mismatch"},
		{"currency", ErrCurrencyMismatch, "currency_mismatch"},
		{"verification", ErrVerificationFailed, "verification_failed"},
		{"not_found", ErrNotFound, "not_found"},
		{"duplicate", ErrDuplicateOrder, "duplicate"},
		{"timeout", context.DeadlineExceeded, "upstream_timeout"},
		{"wrapped", fmt.Errorf("gateway: %w", ErrVerificationFailed), "verification_failed"},
		{"unknown", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Fatalf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"malformed", ErrMalformedRequest, http.StatusBadRequest},
		{"amount", ErrAmountMismatch, http.StatusBadRequest},
		{"currency", ErrCurrencyMismatch, http.StatusBadRequest},
		{"verification", ErrVerificationFailed, http.StatusBadRequest},
		{"not_found", ErrNotFound, http.StatusNotFound},
		{"timeout", context.DeadlineExceeded, http.StatusBadGateway},
		{"wrapped", fmt.Errorf("amount: %w", ErrAmountMismatch), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

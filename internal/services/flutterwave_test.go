package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seracstudio/payrecon-gobackend/internal/apperr"
)

func TestVerifyByID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/transactions/812345/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("auth header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"message": "Transaction fetched successfully",
			"data": {
				"id": 812345,
				"tx_ref": "quote_42",
				"status": "successful",
				"amount": 1000,
				"currency": "USD",
				"payment_type": "card"
			}
		}`))
	}))
	defer srv.Close()

	svc := NewFlutterwaveService("sk_test", srv.URL, 5*time.Second)
	ev, err := svc.VerifyByID(context.Background(), "812345")
	if err != nil {
		t.Fatalf("VerifyByID: %v", err)
	}
	if ev.TransactionID != "812345" {
		t.Fatalf("transaction id = %q", ev.TransactionID)
	}
	if ev.TxRef != "quote_42" || ev.Amount != 1000 || ev.Currency != "USD" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if !ev.Successful() {
		t.Fatal("event not successful")
	}
	if ev.Raw["payment_type"] != "card" {
		t.Fatalf("raw payload not preserved: %+v", ev.Raw)
	}
}

func TestVerifyByReference(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/transactions/verify_by_reference" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("tx_ref"); got != "quote_42" {
			t.Errorf("tx_ref = %q", got)
		}
		w.Write([]byte(`{"status":"success","data":{"id":7,"tx_ref":"quote_42","status":"successful","amount":50,"currency":"NGN"}}`))
	}))
	defer srv.Close()

	svc := NewFlutterwaveService("sk_test", srv.URL, 5*time.Second)
	ev, err := svc.VerifyByReference(context.Background(), "quote_42")
	if err != nil {
		t.Fatalf("VerifyByReference: %v", err)
	}
	if ev.TransactionID != "7" {
		t.Fatalf("transaction id = %q, want numeric id as string", ev.TransactionID)
	}
}

func TestVerifyGatewayRejection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","message":"No transaction was found for this id"}`))
	}))
	defer srv.Close()

	svc := NewFlutterwaveService("sk_test", srv.URL, 5*time.Second)
	_, err := svc.VerifyByID(context.Background(), "nope")
	if !errors.Is(err, apperr.ErrVerificationFailed) {
		t.Fatalf("err = %v, want ErrVerificationFailed", err)
	}
}

func TestVerifyGatewayUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	svc := NewFlutterwaveService("sk_test", srv.URL, time.Second)
	_, err := svc.VerifyByID(context.Background(), "812345")
	if !errors.Is(err, apperr.ErrVerificationFailed) {
		t.Fatalf("err = %v, want ErrVerificationFailed", err)
	}
}

func TestParseTransactionData(t *testing.T) {
	t.Parallel()

	ev, err := ParseTransactionData(json.RawMessage(`{"id":99,"tx_ref":"r","status":"failed","amount":12.5,"currency":"EUR"}`))
	if err != nil {
		t.Fatalf("ParseTransactionData: %v", err)
	}
	if ev.TransactionID != "99" || ev.Amount != 12.5 || ev.Successful() {
		t.Fatalf("unexpected event: %+v", ev)
	}

	if _, err := ParseTransactionData(json.RawMessage(`[1,2]`)); !errors.Is(err, apperr.ErrMalformedRequest) {
		t.Fatalf("err = %v, want ErrMalformedRequest", err)
	}
}

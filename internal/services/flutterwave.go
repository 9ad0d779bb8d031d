package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/seracstudio/payrecon-gobackend/internal/apperr"
	"github.com/seracstudio/payrecon-gobackend/internal/models"
)

// Verifier obtains an authoritative transaction record from the payment
// gateway. Client-supplied amounts and statuses are never trusted; this is
// the only source of truth for the verify-driven path.
type Verifier interface {
	VerifyByID(ctx context.Context, transactionID string) (*models.TransactionEvent, error)
	VerifyByReference(ctx context.Context, txRef string) (*models.TransactionEvent, error)
}

type FlutterwaveService struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewFlutterwaveService(secretKey, baseURL string, timeout time.Duration) *FlutterwaveService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FlutterwaveService{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (s *FlutterwaveService) VerifyByID(ctx context.Context, transactionID string) (*models.TransactionEvent, error) {
	return s.verify(ctx, s.baseURL+"/v3/transactions/"+url.PathEscape(transactionID)+"/verify")
}

func (s *FlutterwaveService) VerifyByReference(ctx context.Context, txRef string) (*models.TransactionEvent, error) {
	return s.verify(ctx, s.baseURL+"/v3/transactions/verify_by_reference?tx_ref="+url.QueryEscape(txRef))
}

func (s *FlutterwaveService) verify(ctx context.Context, endpoint string) (*models.TransactionEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("flutterwave verify: %w", err)
		}
		return nil, fmt.Errorf("%w: gateway unreachable: %v", apperr.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode gateway response: %v", apperr.ErrVerificationFailed, err)
	}

	if resp.StatusCode != http.StatusOK || envelope.Status != "success" || len(envelope.Data) == 0 {
		body, _ := json.Marshal(envelope)
		return nil, fmt.Errorf("%w: status %d: %s", apperr.ErrVerificationFailed, resp.StatusCode, string(body))
	}

	return ParseTransactionData(envelope.Data)
}

// ParseTransactionData decodes a gateway "data" object into a
// TransactionEvent. Shared by the verify client and the webhook handler so
// both paths agree on field semantics. The raw object is preserved for
// audit.
func ParseTransactionData(raw json.RawMessage) (*models.TransactionEvent, error) {
	var data struct {
		ID          json.Number `json:"id"`
		TxRef       string      `json:"tx_ref"`
		Status      string      `json:"status"`
		Amount      float64     `json:"amount"`
		Currency    string      `json:"currency"`
		PaymentType string      `json:"payment_type"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: invalid transaction data: %v", apperr.ErrMalformedRequest, err)
	}

	var rawMap map[string]interface{}
	if err := json.Unmarshal(raw, &rawMap); err != nil {
		return nil, fmt.Errorf("%w: invalid transaction data: %v", apperr.ErrMalformedRequest, err)
	}

	return &models.TransactionEvent{
		TransactionID: data.ID.String(),
		TxRef:         data.TxRef,
		Status:        data.Status,
		Amount:        data.Amount,
		Currency:      data.Currency,
		PaymentType:   data.PaymentType,
		Raw:           rawMap,
	}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seracstudio/payrecon-gobackend/internal/apperr"
	"github.com/seracstudio/payrecon-gobackend/internal/metrics"
	"github.com/seracstudio/payrecon-gobackend/internal/models"
)

const quoteRefPrefix = "quote_"

// ReconcilerService applies the one canonical reconciliation policy to an
// authoritative transaction event: idempotency check, status gate, business
// validation, order insert, best-effort quote linkage.
type ReconcilerService struct {
	orders   OrderStore
	quotes   QuoteStore
	verifier Verifier
	log      *slog.Logger
}

func NewReconcilerService(orders OrderStore, quotes QuoteStore, verifier Verifier, log *slog.Logger) *ReconcilerService {
	return &ReconcilerService{orders: orders, quotes: quotes, verifier: verifier, log: log}
}

type ReconcileInput struct {
	Tenant string
	Event  *models.TransactionEvent
	Source string // models.SourceWebhook or models.SourceVerify

	// Expectations are caller-supplied values to validate against the
	// event, never values to record.
	ExpectedAmount   *float64
	ExpectedCurrency string

	QuoteID string
	Extra   map[string]interface{}
}

type ReconcileResult struct {
	Event            *models.TransactionEvent
	Order            *models.Order
	OrderID          string
	AlreadyProcessed bool
	Ignored          bool
	QuoteLinked      bool
	QuoteWarning     string
}

// Reconcile runs the decision procedure. The returned result is non-nil
// whenever an event was in hand, so callers can surface the raw gateway
// payload alongside validation errors.
func (s *ReconcilerService) Reconcile(ctx context.Context, in ReconcileInput) (*ReconcileResult, error) {
	ev := in.Event
	res := &ReconcileResult{Event: ev}

	if ev == nil || ev.TransactionID == "" {
		return res, fmt.Errorf("%w: missing transaction id", apperr.ErrMalformedRequest)
	}

	// 1. Idempotency: a replayed delivery is a normal outcome, not an error.
	existing, err := s.orders.FindByTransactionID(ctx, in.Tenant, ev.TransactionID)
	if err != nil {
		return res, err
	}
	if existing != nil {
		s.log.Info("duplicate transaction ignored",
			"tenant", in.Tenant, "transaction_id", ev.TransactionID)
		res.AlreadyProcessed = true
		res.Order = existing
		res.OrderID = existing.ID.Hex()
		return res, nil
	}

	// 2. Status gate: pending/failed transactions are acknowledged, never
	// recorded.
	if !ev.Successful() {
		s.log.Info("non-successful transaction ignored",
			"tenant", in.Tenant, "transaction_id", ev.TransactionID, "tx_status", ev.Status)
		res.Ignored = true
		return res, nil
	}

	// 3. Business validation, amount before currency so reporting is
	// deterministic.
	if in.ExpectedAmount != nil && *in.ExpectedAmount != ev.Amount {
		return res, fmt.Errorf("%w: expected %v, received %v",
			apperr.ErrAmountMismatch, *in.ExpectedAmount, ev.Amount)
	}
	if in.ExpectedCurrency != "" && !strings.EqualFold(in.ExpectedCurrency, ev.Currency) {
		return res, fmt.Errorf("%w: expected %s, received %s",
			apperr.ErrCurrencyMismatch, in.ExpectedCurrency, ev.Currency)
	}

	// 4. Order insert: the commit point. The unique transaction_id index
	// resolves the concurrent-delivery race; a loser re-reads the winner's
	// order and reports an idempotent success.
	paymentType := ev.PaymentType
	if paymentType == "" {
		paymentType = "unknown"
	}
	order := &models.Order{
		TransactionID: ev.TransactionID,
		TxRef:         ev.TxRef,
		Amount:        ev.Amount,
		Currency:      ev.Currency,
		Status:        models.OrderStatusPaid,
		Source:        in.Source,
		PaymentType:   paymentType,
		GatewayData:   ev.Raw,
		Extra:         in.Extra,
	}
	orderID, err := s.orders.Insert(ctx, in.Tenant, order)
	if errors.Is(err, apperr.ErrDuplicateOrder) {
		winner, findErr := s.orders.FindByTransactionID(ctx, in.Tenant, ev.TransactionID)
		if findErr != nil || winner == nil {
			return res, fmt.Errorf("duplicate order lookup: %w", err)
		}
		res.AlreadyProcessed = true
		res.Order = winner
		res.OrderID = winner.ID.Hex()
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Order = order
	res.OrderID = orderID
	metrics.OrdersCreatedTotal.WithLabelValues(in.Tenant, in.Source).Inc()

	// 5. Quote linkage, best-effort: the order is already the source of
	// truth for "money received", so a missing or stale quote only warns.
	quoteID := in.QuoteID
	if quoteID == "" && strings.HasPrefix(ev.TxRef, quoteRefPrefix) {
		quoteID = strings.TrimPrefix(ev.TxRef, quoteRefPrefix)
	}
	if err := s.quotes.MarkPaid(ctx, in.Tenant, quoteID, ev.TxRef, orderID); err != nil {
		s.log.Warn("quote update failed",
			"tenant", in.Tenant, "tx_ref", ev.TxRef, "quote_id", quoteID, "err", err)
		metrics.QuoteLinkFailures.Inc()
		res.QuoteWarning = err.Error()
	} else {
		res.QuoteLinked = true
	}

	s.log.Info("payment reconciled",
		"tenant", in.Tenant, "transaction_id", ev.TransactionID,
		"tx_ref", ev.TxRef, "order_id", orderID, "source", in.Source)
	return res, nil
}

type VerifyInput struct {
	Tenant           string
	TransactionID    string
	TxRef            string
	ExpectedAmount   *float64
	ExpectedCurrency string
	QuoteID          string
	Extra            map[string]interface{}
}

// VerifyAndReconcile is the client-initiated path: the claimed transaction
// is fetched from the gateway before any of its fields are trusted, then
// reconciled like a webhook delivery.
func (s *ReconcilerService) VerifyAndReconcile(ctx context.Context, in VerifyInput) (*ReconcileResult, error) {
	if in.TransactionID == "" && in.TxRef == "" {
		return nil, fmt.Errorf("%w: missing transaction_id or tx_ref", apperr.ErrMalformedRequest)
	}

	// Skip the gateway round-trip for a known transaction.
	if in.TransactionID != "" {
		existing, err := s.orders.FindByTransactionID(ctx, in.Tenant, in.TransactionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &ReconcileResult{
				AlreadyProcessed: true,
				Order:            existing,
				OrderID:          existing.ID.Hex(),
			}, nil
		}
	}

	var (
		ev  *models.TransactionEvent
		err error
	)
	if in.TransactionID != "" {
		ev, err = s.verifier.VerifyByID(ctx, in.TransactionID)
	} else {
		ev, err = s.verifier.VerifyByReference(ctx, in.TxRef)
	}
	if err != nil {
		return nil, err
	}
	if ev.TxRef == "" {
		ev.TxRef = in.TxRef
	}

	return s.Reconcile(ctx, ReconcileInput{
		Tenant:           in.Tenant,
		Event:            ev,
		Source:           models.SourceVerify,
		ExpectedAmount:   in.ExpectedAmount,
		ExpectedCurrency: in.ExpectedCurrency,
		QuoteID:          in.QuoteID,
		Extra:            in.Extra,
	})
}

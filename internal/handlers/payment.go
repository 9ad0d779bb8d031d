package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/seracstudio/payrecon-gobackend/internal/apperr"
	"github.com/seracstudio/payrecon-gobackend/internal/config"
	"github.com/seracstudio/payrecon-gobackend/internal/metrics"
	"github.com/seracstudio/payrecon-gobackend/internal/models"
	"github.com/seracstudio/payrecon-gobackend/internal/services"
)

// SignatureHeader is the gateway's webhook signature header.
const SignatureHeader = "verif-hash"

type PaymentHandler struct {
	auth       *services.SignatureAuthenticator
	reconciler *services.ReconcilerService
	cfg        config.Config
	log        *slog.Logger
}

func NewPaymentHandler(auth *services.SignatureAuthenticator, reconciler *services.ReconcilerService, cfg config.Config, log *slog.Logger) *PaymentHandler {
	return &PaymentHandler{auth: auth, reconciler: reconciler, cfg: cfg, log: log}
}

// resolveTenant applies the configured tenant policy: explicit value wins,
// otherwise the default tenant unless TENANT_REQUIRED is on.
func (h *PaymentHandler) resolveTenant(brand string) (string, error) {
	if brand != "" {
		return brand, nil
	}
	if h.cfg.TenantRequired {
		return "", apperr.ErrMalformedRequest
	}
	return h.cfg.DefaultTenant(), nil
}

// Webhook handles gateway push deliveries. The body is captured raw before
// parsing so HMAC verification covers the exact inbound bytes.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Invalid payload"})
		return
	}

	if !h.auth.Authenticate(rawBody, r.Header.Get(SignatureHeader)) {
		h.log.Warn("webhook signature rejected", "remote", r.RemoteAddr)
		metrics.WebhookEventsTotal.WithLabelValues("unauthorized").Inc()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "error", "message": "Unauthorized webhook"})
		return
	}

	var payload struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &payload); err != nil || len(payload.Data) == 0 {
		metrics.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Invalid payload"})
		return
	}

	event, err := services.ParseTransactionData(payload.Data)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Invalid payload"})
		return
	}

	tenant, err := h.resolveTenant(r.URL.Query().Get("brand"))
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Missing brand"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.UpstreamTimeout)
	defer cancel()

	res, err := h.reconciler.Reconcile(ctx, services.ReconcileInput{
		Tenant: tenant,
		Event:  event,
		Source: models.SourceWebhook,
	})
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("webhook reconciliation failed", "tenant", tenant, "err", err)
			metrics.WebhookEventsTotal.WithLabelValues("error").Inc()
			writeJSON(w, status, map[string]string{"status": "error", "message": "Internal server error"})
			return
		}
		metrics.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		writeJSON(w, status, map[string]string{"status": "error", "message": err.Error()})
		return
	}

	switch {
	case res.Ignored:
		metrics.WebhookEventsTotal.WithLabelValues("ignored").Inc()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	case res.AlreadyProcessed:
		metrics.WebhookEventsTotal.WithLabelValues("duplicate").Inc()
		writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate", "orderId": res.OrderID})
	default:
		metrics.WebhookEventsTotal.WithLabelValues("success").Inc()
		writeJSON(w, http.StatusOK, map[string]string{"status": "success", "orderId": res.OrderID})
	}
}

// Verify handles client-initiated verification. Amount, currency and status
// in the body are expectations to check against the gateway's answer, never
// values to record.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionID  string                 `json:"transaction_id"`
		TxRef          string                 `json:"tx_ref"`
		ExpectedAmount *float64               `json:"expectedAmount"`
		Currency       string                 `json:"currency"`
		QuoteID        string                 `json:"quoteId"`
		Brand          string                 `json:"brand"`
		OrderData      map[string]interface{} `json:"orderData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Invalid request body"})
		return
	}
	if req.TransactionID == "" && req.TxRef == "" {
		metrics.VerifyRequestsTotal.WithLabelValues("failed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Missing transaction_id or tx_ref"})
		return
	}

	tenant, err := h.resolveTenant(req.Brand)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Missing brand"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.UpstreamTimeout)
	defer cancel()

	res, err := h.reconciler.VerifyAndReconcile(ctx, services.VerifyInput{
		Tenant:           tenant,
		TransactionID:    req.TransactionID,
		TxRef:            req.TxRef,
		ExpectedAmount:   req.ExpectedAmount,
		ExpectedCurrency: req.Currency,
		QuoteID:          req.QuoteID,
		Extra:            req.OrderData,
	})
	if err != nil {
		h.writeVerifyError(w, res, err)
		return
	}

	// A verified-but-unsettled transaction is a validation failure on this
	// path; only the webhook path acknowledges it silently.
	if res.Ignored {
		metrics.VerifyRequestsTotal.WithLabelValues("failed").Inc()
		body := map[string]interface{}{"status": "failed", "message": "Transaction not successful"}
		if res.Event != nil {
			body["data"] = res.Event.Raw
		}
		writeJSON(w, http.StatusBadRequest, body)
		return
	}

	metrics.VerifyRequestsTotal.WithLabelValues("success").Inc()
	body := map[string]interface{}{
		"status":   "success",
		"verified": true,
		"orderId":  res.OrderID,
	}
	if res.AlreadyProcessed {
		body["alreadyProcessed"] = true
	}
	if res.Event != nil {
		body["data"] = res.Event.Raw
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *PaymentHandler) writeVerifyError(w http.ResponseWriter, res *services.ReconcileResult, err error) {
	status := apperr.HTTPStatus(err)

	if status >= http.StatusInternalServerError && !errors.Is(err, context.DeadlineExceeded) {
		h.log.Error("verify failed", "err", err)
		metrics.VerifyRequestsTotal.WithLabelValues("error").Inc()
		writeJSON(w, status, map[string]string{"status": "error", "message": "Internal server error"})
		return
	}

	metrics.VerifyRequestsTotal.WithLabelValues("failed").Inc()
	body := map[string]interface{}{"status": "failed", "message": err.Error()}
	if res != nil && res.Event != nil {
		body["data"] = res.Event.Raw
	}
	writeJSON(w, status, body)
}

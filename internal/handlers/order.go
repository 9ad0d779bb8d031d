package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/seracstudio/payrecon-gobackend/internal/apperr"
	"github.com/seracstudio/payrecon-gobackend/internal/config"
	"github.com/seracstudio/payrecon-gobackend/internal/services"
)

type OrderHandler struct {
	orders services.OrderStore
	cfg    config.Config
	log    *slog.Logger
}

func NewOrderHandler(orders services.OrderStore, cfg config.Config, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, cfg: cfg, log: log}
}

// GetOrder looks up an order by tracking reference. Without an explicit
// brand the configured tenant list is searched in parallel; the response is
// still deterministic because the first match in list order wins.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	var trackingRef, brandID string

	switch r.Method {
	case http.MethodGet:
		trackingRef = r.URL.Query().Get("trackingRef")
		brandID = r.URL.Query().Get("brandId")
	case http.MethodPost:
		var req struct {
			TrackingRef string `json:"trackingRef"`
			BrandID     string `json:"brandId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return
		}
		trackingRef = req.TrackingRef
		brandID = req.BrandID
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	if trackingRef == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing trackingRef"})
		return
	}

	tenants := h.cfg.Tenants
	if brandID != "" {
		tenants = []string{brandID}
	}

	found := make([]map[string]interface{}, len(tenants))
	g, ctx := errgroup.WithContext(r.Context())
	for i, tenant := range tenants {
		i, tenant := i, tenant
		g.Go(func() error {
			doc, err := h.orders.FindByTrackingRef(ctx, tenant, trackingRef)
			if errors.Is(err, apperr.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.log.Error("order lookup failed", "tracking_ref", trackingRef, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		return
	}

	for i, doc := range found {
		if doc == nil {
			continue
		}
		doc["brandId"] = tenants[i]
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"found": true,
			"order": isoTimestamps(doc),
		})
		return
	}

	if brandID != "" {
		// Never confirm that the reference exists under another tenant.
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"found":   false,
			"message": "No order found for this brand",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"found": false})
}

// isoTimestamps renders every persisted timestamp as an ISO-8601 string and
// object ids as hex, recursing through subdocuments and arrays such as
// statusHistory.
func isoTimestamps(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		return t.Hex()
	case bson.M:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = isoTimestamps(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = isoTimestamps(val)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = isoTimestamps(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = isoTimestamps(val)
		}
		return out
	default:
		return v
	}
}

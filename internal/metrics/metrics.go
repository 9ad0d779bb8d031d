package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound gateway webhook deliveries by outcome",
		},
		[]string{"result"}, // success|ignored|duplicate|unauthorized|malformed|error
	)

	VerifyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verify_requests_total",
			Help: "Client-initiated verify requests by outcome",
		},
		[]string{"result"}, // success|failed|error
	)

	OrdersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Reconciled orders written to the store",
		},
		[]string{"tenant", "source"}, // source: webhook|verify
	)

	QuoteLinkFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quote_link_failures_total",
			Help: "Best-effort quote updates that did not apply",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(WebhookEventsTotal)
	prometheus.MustRegister(VerifyRequestsTotal)
	prometheus.MustRegister(OrdersCreatedTotal)
	prometheus.MustRegister(QuoteLinkFailures)
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	InboundMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_inbound_messages_total",
			Help: "Inbound WhatsApp webhook events by outcome.",
		},
		[]string{"outcome"}, // processed | rejected | unknown_business
	)

	RepliesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_replies_total",
			Help: "Generated assistant replies by outcome.",
		},
		[]string{"outcome"}, // ok | not_configured | fallback
	)

	OutboundDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_outbound_dispatches_total",
			Help: "Outbound WhatsApp sends by kind and result.",
		},
		[]string{"kind", "result"},
	)

	CheckoutSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Payment checkout sessions by outcome.",
		},
		[]string{"outcome"}, // created | rejected | provider_error
	)

	Reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_reconciliations_total",
			Help: "Payment webhook reconciliations by event and result.",
		},
		[]string{"event", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		InboundMessages,
		RepliesGenerated,
		OutboundDispatches,
		CheckoutSessions,
		Reconciliations,
	)
}

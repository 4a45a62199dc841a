// Package metrics exposes Prometheus counters for expansions, webhooks and
// uploads.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Expansions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "template_expansions_total",
		Help:      "Template expansions by template kind and outcome.",
	}, []string{"kind", "outcome"})

	RowsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "expansion_rows_created_total",
		Help:      "Rows inserted by template expansions, per table.",
	}, []string{"table"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "webhook_events_total",
		Help:      "Inbound scheduling webhook events by event type and outcome.",
	}, []string{"event", "outcome"})

	MaterialUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "material_uploads_total",
		Help:      "Material uploads by outcome.",
	}, []string{"outcome"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

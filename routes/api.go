// Package routes exposes the HTTP surface of the payment notifier and runs
// inbound webhooks through verification, classification, normalization and
// fan-out.
package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaveworks/payment-notifier/common"
	"github.com/weaveworks/payment-notifier/common/airtable"
	"github.com/weaveworks/payment-notifier/diaglog"
	"github.com/weaveworks/payment-notifier/event"
	"github.com/weaveworks/payment-notifier/sender"
	"github.com/weaveworks/payment-notifier/signature"
)

// How a webhook delivery ended up, for metrics and the diagnostic log.
const (
	dispositionRejectedSignature = "rejected_signature"
	dispositionRejectedMalformed = "rejected_malformed"
	dispositionDropped           = "dropped"
	dispositionDispatched        = "dispatched"
	dispositionPanic             = "panic"
)

var webhookDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: common.PrometheusNamespace,
	Name:      "webhook_deliveries_total",
	Help:      "Total number of webhook deliveries by outcome.",
}, []string{"disposition"})

func init() {
	prometheus.MustRegister(webhookDeliveries)
}

// API is the payment notifier HTTP API.
type API struct {
	Verifier   *signature.Verifier
	Normalizer *event.Normalizer
	Fanout     *sender.Fanout
	Store      airtable.Client
	Diag       *diaglog.Log
	http.Handler
}

// New creates a new API serving its routes on a standalone router.
func New(verifier *signature.Verifier, normalizer *event.Normalizer, fanout *sender.Fanout, store airtable.Client, diag *diaglog.Log) *API {
	a := &API{
		Verifier:   verifier,
		Normalizer: normalizer,
		Fanout:     fanout,
		Store:      store,
		Diag:       diag,
	}
	r := mux.NewRouter()
	a.RegisterRoutes(r)
	a.Handler = r
	return a
}

// RegisterRoutes registers the payment notifier HTTP routes to the provided
// Router.
func (a *API) RegisterRoutes(r *mux.Router) {
	for _, route := range []struct {
		name, method, path string
		handler            http.HandlerFunc
	}{
		{"root", "GET", "/", a.Root},
		{"health", "GET", "/health", a.Health},
		{"logs", "GET", "/logs", a.Logs},
		{"test", "POST", "/test", a.Test},
		{"webhook", "POST", "/webhook", a.Webhook},
	} {
		r.Handle(route.path, route.handler).Methods(route.method).Name(route.name)
	}
}

package routes

import (
	"net/http"
	"time"

	"github.com/weaveworks/payment-notifier/diaglog"
	"github.com/weaveworks/payment-notifier/event"
	"github.com/weaveworks/payment-notifier/render"
)

type rootResponse struct {
	Service      string   `json:"service"`
	Status       string   `json:"status"`
	Endpoints    []string `json:"endpoints"`
	LastActivity string   `json:"lastActivity"`
}

// Root describes the service.
func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, rootResponse{
		Service:      "payment-notifier",
		Status:       "ok",
		Endpoints:    []string{"GET /", "GET /health", "GET /logs", "POST /test", "POST /webhook"},
		LastActivity: render.Time(a.Diag.LastActivity()),
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	LogCount  int    `json:"logCount"`
}

// Health is the liveness probe.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: render.Time(time.Now()),
		LogCount:  a.Diag.Count(),
	})
}

type logsResponse struct {
	Count   int             `json:"count"`
	Entries []diaglog.Entry `json:"entries"`
}

// Logs returns the most recent diagnostic entries.
func (a *API) Logs(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, logsResponse{
		Count:   a.Diag.Count(),
		Entries: a.Diag.Recent(50),
	})
}

type testResponse struct {
	EmailOK bool `json:"emailOk"`
	TableOK bool `json:"tableOk"`
}

// Test pushes a synthetic failed payment through the alert sink and probes
// the record store table, reporting each outcome.
func (a *API) Test(w http.ResponseWriter, r *http.Request) {
	synthetic := &event.FailedPayment{
		CustomerEmail:     "test@example.com",
		CustomerID:        "cus_test",
		AmountMinorUnits:  2000,
		Currency:          "usd",
		PaymentMethodType: "card",
		FailureReason:     "Synthetic test alert",
		ChargeID:          "ch_test",
		FailureTimestamp:  time.Now().Unix() * 1000,
	}

	emailOK := true
	if err := a.Fanout.Alerts.Send(r.Context(), synthetic); err != nil {
		emailOK = false
		a.Diag.Appendf("test alert failed: %v", err)
	} else {
		a.Diag.Append("test alert sent")
	}

	tableOK, err := a.Store.TableExists(r.Context())
	if err != nil {
		a.Diag.Appendf("table probe failed: %v", err)
		tableOK = false
	} else if !tableOK {
		a.Diag.Append("record store table does not exist; create it by hand")
	}

	render.JSON(w, http.StatusOK, testResponse{EmailOK: emailOK, TableOK: tableOK})
}

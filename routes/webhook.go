package routes

import (
	"io/ioutil"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaveworks/payment-notifier/event"
	"github.com/weaveworks/payment-notifier/render"
)

// SignatureHeader carries the processor's signature over the raw body.
const SignatureHeader = "Stripe-Signature"

type receivedResponse struct {
	Received bool `json:"received"`
}

// Webhook ingests one processor delivery. The body is consumed as raw bytes
// before any parsing: the signature is computed over the exact byte stream.
// Downstream sink failures never change the response; only signature and
// parse rejections tell the processor to redeliver.
func (a *API) Webhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			webhookDeliveries.With(prometheus.Labels{"disposition": dispositionPanic}).Inc()
			a.Diag.Appendf("webhook handler panic: %v", rec)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}()

	payload, err := ioutil.ReadAll(r.Body)
	if err != nil {
		webhookDeliveries.With(prometheus.Labels{"disposition": dispositionRejectedMalformed}).Inc()
		a.Diag.Appendf("cannot read webhook body: %v", err)
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}

	if !a.Verifier.Verify(payload, r.Header.Get(SignatureHeader)) {
		webhookDeliveries.With(prometheus.Labels{"disposition": dispositionRejectedSignature}).Inc()
		a.Diag.Append("webhook rejected: invalid signature")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	env, err := event.Parse(payload)
	if err != nil {
		webhookDeliveries.With(prometheus.Labels{"disposition": dispositionRejectedMalformed}).Inc()
		a.Diag.Appendf("webhook rejected: %v", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	classified, err := event.Classify(env)
	if err != nil {
		webhookDeliveries.With(prometheus.Labels{"disposition": dispositionRejectedMalformed}).Inc()
		a.Diag.Appendf("webhook rejected: %v", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	a.Diag.Appendf("webhook received: %s", env.Type)

	record := a.Normalizer.Normalize(r.Context(), classified)
	if record == nil {
		// Still acknowledged: a drop is not a reason to redeliver.
		webhookDeliveries.With(prometheus.Labels{"disposition": dispositionDropped}).Inc()
		render.JSON(w, http.StatusOK, receivedResponse{Received: true})
		return
	}

	res := a.Fanout.Dispatch(r.Context(), record)
	webhookDeliveries.With(prometheus.Labels{"disposition": dispositionDispatched}).Inc()
	a.Diag.Appendf("dispatched charge %s: emailOk=%t storeOk=%t", record.ChargeID, res.EmailOK, res.StoreOK)

	render.JSON(w, http.StatusOK, receivedResponse{Received: true})
}

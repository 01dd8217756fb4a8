// Package event classifies inbound Stripe webhook payloads and normalizes
// them into the canonical FailedPayment record the sinks consume.
package event

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/weaveworks/payment-notifier/common/stripe"
)

// Recognized event types. Anything else is dropped as unhandled.
const (
	TypeChargeFailed        = "charge.failed"
	TypePaymentIntentFailed = "payment_intent.payment_failed"
	TypeInvoiceFailed       = "invoice.payment_failed"
)

// Envelope is the outer shape of every Stripe webhook delivery. Data.Object
// is kept raw until the event type says what it is.
type Envelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Parse decodes raw webhook bytes into an Envelope.
func Parse(payload []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal webhook payload")
	}
	return env, nil
}

// PaymentIntent is the webhook shape of payment_intent.* events: the charges
// ride along inside the intent.
type PaymentIntent struct {
	ID      string `json:"id"`
	Charges struct {
		Data []stripe.Charge `json:"data"`
	} `json:"charges"`
}

// Invoice is the webhook shape of invoice.* events: the charge is referenced
// by ID only and has to be fetched.
type Invoice struct {
	ID     string `json:"id"`
	Charge string `json:"charge"`
}

// Classified is the tagged union over the recognized event payloads. Exactly
// one of the payload fields is set, according to Type; an unrecognized type
// sets none.
type Classified struct {
	Type          string
	Charge        *stripe.Charge
	PaymentIntent *PaymentIntent
	Invoice       *Invoice
}

// Classify decodes the envelope's data object according to its event type.
func Classify(env *Envelope) (*Classified, error) {
	c := &Classified{Type: env.Type}
	var err error
	switch env.Type {
	case TypeChargeFailed:
		charge := &stripe.Charge{}
		err = json.Unmarshal(env.Data.Object, charge)
		c.Charge = charge
	case TypePaymentIntentFailed:
		intent := &PaymentIntent{}
		err = json.Unmarshal(env.Data.Object, intent)
		c.PaymentIntent = intent
	case TypeInvoiceFailed:
		inv := &Invoice{}
		err = json.Unmarshal(env.Data.Object, inv)
		c.Invoice = inv
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot unmarshal %s data object", env.Type)
	}
	return c, nil
}

package event

import (
	"context"
	"time"

	"github.com/weaveworks/payment-notifier/common/stripe"
	"github.com/weaveworks/payment-notifier/diaglog"
)

// Fallbacks for charge fields that may be absent.
const (
	UnknownValue  = "Unknown"
	UnknownReason = "Unknown reason"
)

// FailedPayment is the canonical record of one failed payment, as consumed by
// the notification sinks.
type FailedPayment struct {
	CustomerEmail     string
	CustomerID        string
	AmountMinorUnits  int64
	Currency          string
	PaymentMethodType string
	FailureReason     string
	ChargeID          string
	// FailureTimestamp is Unix milliseconds, converted from Stripe's
	// second-resolution charge creation time.
	FailureTimestamp int64
}

// FailedAt returns the failure timestamp as a time.Time.
func (p *FailedPayment) FailedAt() time.Time {
	return time.Unix(p.FailureTimestamp/1000, (p.FailureTimestamp%1000)*int64(time.Millisecond)).UTC()
}

// Normalizer turns classified events into FailedPayment records, fetching the
// charge from Stripe for events that only reference it.
type Normalizer struct {
	Charges       stripe.Client
	Diag          *diaglog.Log
	LookupTimeout time.Duration
}

// Normalize produces the FailedPayment for a classified event, or nil when
// the event carries no resolvable charge. Lookup failures are logged and
// dropped; no error escapes.
func (n *Normalizer) Normalize(ctx context.Context, c *Classified) *FailedPayment {
	switch c.Type {
	case TypeChargeFailed:
		return fromCharge(c.Charge)

	case TypePaymentIntentFailed:
		if len(c.PaymentIntent.Charges.Data) == 0 {
			n.Diag.Appendf("payment_intent %s has no charges, dropping", c.PaymentIntent.ID)
			return nil
		}
		return fromCharge(&c.PaymentIntent.Charges.Data[0])

	case TypeInvoiceFailed:
		if c.Invoice.Charge == "" {
			n.Diag.Appendf("invoice %s references no charge, dropping", c.Invoice.ID)
			return nil
		}
		timeout := n.LookupTimeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		charge, err := n.Charges.GetCharge(ctx, c.Invoice.Charge)
		if err != nil {
			n.Diag.Appendf("lookup failed for charge %s of invoice %s: %v", c.Invoice.Charge, c.Invoice.ID, err)
			return nil
		}
		return fromCharge(charge)

	default:
		n.Diag.Appendf("unhandled event type %s, dropping", c.Type)
		return nil
	}
}

func fromCharge(charge *stripe.Charge) *FailedPayment {
	p := &FailedPayment{
		CustomerEmail:     UnknownValue,
		CustomerID:        UnknownValue,
		AmountMinorUnits:  charge.Amount,
		Currency:          charge.Currency,
		PaymentMethodType: UnknownValue,
		FailureReason:     UnknownReason,
		ChargeID:          charge.ID,
		FailureTimestamp:  charge.Created * 1000,
	}
	if charge.BillingDetails != nil && charge.BillingDetails.Email != "" {
		p.CustomerEmail = charge.BillingDetails.Email
	}
	if charge.Customer != "" {
		p.CustomerID = charge.Customer
	}
	if charge.PaymentMethodDetails != nil && charge.PaymentMethodDetails.Type != "" {
		p.PaymentMethodType = charge.PaymentMethodDetails.Type
	}
	if charge.FailureMessage != "" {
		p.FailureReason = charge.FailureMessage
	} else if charge.Outcome != nil && charge.Outcome.SellerMessage != "" {
		p.FailureReason = charge.Outcome.SellerMessage
	}
	return p
}

package sender

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/weaveworks/payment-notifier/common/airtable"
	"github.com/weaveworks/payment-notifier/event"
	"github.com/weaveworks/payment-notifier/render"
)

// Record statuses in the store. This pipeline only ever writes StatusFailed;
// StatusResolved is set by hand once a payment is recovered.
const (
	StatusFailed   = "Failed"
	StatusResolved = "Resolved"
)

// RecordSink persists failed payments to the Airtable record store.
type RecordSink struct {
	Client airtable.Client
}

// Create writes one record for p. One invocation, one record: redelivered
// events create duplicates.
func (rs *RecordSink) Create(ctx context.Context, p *event.FailedPayment) error {
	fields := airtable.Fields{
		"Customer Email": p.CustomerEmail,
		"Customer ID":    p.CustomerID,
		"Amount":         float64(p.AmountMinorUnits) / 100,
		"Currency":       strings.ToUpper(p.Currency),
		"Payment Method": p.PaymentMethodType,
		"Failure Reason": p.FailureReason,
		"Charge ID":      p.ChargeID,
		"Failed At":      render.Time(p.FailedAt()),
		"Status":         StatusFailed,
	}
	if err := rs.Client.CreateRecord(ctx, fields); err != nil {
		return errors.Wrapf(err, "cannot store record for charge %s", p.ChargeID)
	}
	return nil
}

package sender

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/payment-notifier/common/airtable"
	"github.com/weaveworks/payment-notifier/diaglog"
	"github.com/weaveworks/payment-notifier/event"
)

func testPayment() *event.FailedPayment {
	return &event.FailedPayment{
		CustomerEmail:     "Unknown",
		CustomerID:        "cus_42",
		AmountMinorUnits:  2000,
		Currency:          "usd",
		PaymentMethodType: "card",
		FailureReason:     "Your card was declined.",
		ChargeID:          "ch_123",
		FailureTimestamp:  1700000000000,
	}
}

type stubAlert struct {
	err  error
	sent int
}

func (s *stubAlert) Send(context.Context, *event.FailedPayment) error {
	s.sent++
	return s.err
}

type stubStore struct {
	err     error
	created int
}

func (s *stubStore) Create(context.Context, *event.FailedPayment) error {
	s.created++
	return s.err
}

func TestDispatchBothSucceed(t *testing.T) {
	alerts, store := &stubAlert{}, &stubStore{}
	f := &Fanout{Alerts: alerts, Store: store, Diag: diaglog.New()}

	res := f.Dispatch(context.Background(), testPayment())
	assert.True(t, res.EmailOK)
	assert.True(t, res.StoreOK)
	assert.Equal(t, 1, alerts.sent)
	assert.Equal(t, 1, store.created)
}

func TestDispatchIndependentFailure(t *testing.T) {
	diag := diaglog.New()
	alerts := &stubAlert{err: errors.New("smtp unreachable")}
	store := &stubStore{}
	f := &Fanout{Alerts: alerts, Store: store, Diag: diag}

	res := f.Dispatch(context.Background(), testPayment())
	assert.False(t, res.EmailOK)
	assert.True(t, res.StoreOK)
	// The store sink was still attempted.
	assert.Equal(t, 1, store.created)

	var sawFailure, sawSuccess bool
	for _, e := range diag.Recent(10) {
		if e.Message == "record stored for charge ch_123" {
			sawSuccess = true
		}
		if e.Message == "email alert failed for charge ch_123: smtp unreachable" {
			sawFailure = true
		}
	}
	assert.True(t, sawFailure)
	assert.True(t, sawSuccess)
}

func TestDispatchBothFail(t *testing.T) {
	f := &Fanout{
		Alerts: &stubAlert{err: errors.New("nope")},
		Store:  &stubStore{err: errors.New("also nope")},
		Diag:   diaglog.New(),
	}
	res := f.Dispatch(context.Background(), testPayment())
	assert.False(t, res.EmailOK)
	assert.False(t, res.StoreOK)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$20.00 USD", FormatAmount(2000, "usd"))
	assert.Equal(t, "$0.50 EUR", FormatAmount(50, "eur"))
	assert.Equal(t, "$1234.56 GBP", FormatAmount(123456, "gbp"))
}

func TestAlertMessage(t *testing.T) {
	subject, body := alertMessage(testPayment())
	assert.Equal(t, "Failed payment: $20.00 USD", subject)
	assert.Contains(t, body, "$20.00 USD")
	assert.Contains(t, body, "Unknown (cus_42)")
	assert.Contains(t, body, "card")
	assert.Contains(t, body, "Your card was declined.")
	assert.Contains(t, body, "ch_123")
	assert.Contains(t, body, "2023-11-14T22:13:20Z")
}

func TestEmailSenderLogScheme(t *testing.T) {
	es := NewEmailSender(EmailConfig{URI: "log://", From: "alerts@weave.test", To: "oncall@weave.test"})
	assert.NoError(t, es.Send(context.Background(), testPayment()))
}

func TestEmailSenderBadScheme(t *testing.T) {
	es := NewEmailSender(EmailConfig{URI: "carrier-pigeon://coop", From: "a@b", To: "c@d"})
	assert.Error(t, es.Send(context.Background(), testPayment()))
}

type captureAirtable struct {
	fields airtable.Fields
	err    error
}

func (c *captureAirtable) CreateRecord(_ context.Context, fields airtable.Fields) error {
	c.fields = fields
	return c.err
}

func (c *captureAirtable) TableExists(context.Context) (bool, error) {
	return true, nil
}

func TestRecordSinkFields(t *testing.T) {
	at := &captureAirtable{}
	rs := &RecordSink{Client: at}
	require.NoError(t, rs.Create(context.Background(), testPayment()))

	assert.Equal(t, "Unknown", at.fields["Customer Email"])
	assert.Equal(t, "cus_42", at.fields["Customer ID"])
	assert.Equal(t, 20.0, at.fields["Amount"])
	assert.Equal(t, "USD", at.fields["Currency"])
	assert.Equal(t, "card", at.fields["Payment Method"])
	assert.Equal(t, "Your card was declined.", at.fields["Failure Reason"])
	assert.Equal(t, "ch_123", at.fields["Charge ID"])
	assert.Equal(t, "2023-11-14T22:13:20Z", at.fields["Failed At"])
	assert.Equal(t, StatusFailed, at.fields["Status"])
}

func TestRecordSinkError(t *testing.T) {
	rs := &RecordSink{Client: &captureAirtable{err: errors.New("422 unknown field")}}
	err := rs.Create(context.Background(), testPayment())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ch_123")
}

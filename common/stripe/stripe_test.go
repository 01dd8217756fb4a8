package stripe_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/payment-notifier/common/stripe"
)

type mockClient struct {
	req    *http.Request
	status int
	body   string
}

func (m *mockClient) Do(req *http.Request) (*http.Response, error) {
	m.req = req
	return &http.Response{
		StatusCode: m.status,
		Status:     http.StatusText(m.status),
		Body:       ioutil.NopCloser(bytes.NewReader([]byte(m.body))),
	}, nil
}

func TestGetCharge(t *testing.T) {
	m := &mockClient{status: http.StatusOK, body: `{
		"id": "ch_123",
		"amount": 2000,
		"currency": "usd",
		"customer": "cus_42",
		"created": 1700000000,
		"failure_message": "Your card was declined.",
		"billing_details": {"email": "jo@example.com"},
		"payment_method_details": {"type": "card"}
	}`}
	s := stripe.New(stripe.Config{APIKey: "sk_test", Endpoint: "https://stripe.test/v1"}, m)

	charge, err := s.GetCharge(context.Background(), "ch_123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test", m.req.Header.Get("Authorization"))
	assert.Equal(t, "https://stripe.test/v1/charges/ch_123", m.req.URL.String())
	assert.Equal(t, int64(2000), charge.Amount)
	assert.Equal(t, "jo@example.com", charge.BillingDetails.Email)
	assert.Equal(t, "card", charge.PaymentMethodDetails.Type)
}

func TestGetChargeNotFound(t *testing.T) {
	m := &mockClient{status: http.StatusNotFound, body: `{"error": {"type": "invalid_request_error"}}`}
	s := stripe.New(stripe.Config{APIKey: "sk_test", Endpoint: "https://stripe.test/v1/"}, m)

	_, err := s.GetCharge(context.Background(), "ch_missing")
	assert.Equal(t, stripe.ErrNotFound, err)
}

func TestGetChargeEmptyID(t *testing.T) {
	s := stripe.New(stripe.Config{APIKey: "sk_test", Endpoint: "https://stripe.test/v1/"}, &mockClient{status: http.StatusOK})
	_, err := s.GetCharge(context.Background(), "")
	assert.Equal(t, stripe.ErrInvalidChargeID, err)
}

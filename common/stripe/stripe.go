// Package stripe is a thin client for the parts of the Stripe API this
// service needs: retrieving a charge by ID when a webhook only references it.
package stripe

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaveworks/common/http/client"
	"github.com/weaveworks/common/instrument"
	"github.com/weaveworks/payment-notifier/common"
)

var clientRequestCollector = instrument.NewHistogramCollectorFromOpts(prometheus.HistogramOpts{
	Namespace: common.PrometheusNamespace,
	Subsystem: "stripe_client",
	Name:      "request_duration_seconds",
	Help:      "Response time of Stripe requests.",
})

func init() {
	clientRequestCollector.Register()
}

// Config provides the values necessary to create a Stripe client.
type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// RegisterFlags registers flags to configure a Stripe client. Defaults come
// from the environment so the service can be configured without flags.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.APIKey, "stripe.api-key", os.Getenv("STRIPE_SECRET_KEY"), "Secret key for the Stripe API")
	f.StringVar(&c.Endpoint, "stripe.endpoint", "https://api.stripe.com/v1/", "Endpoint for the Stripe API")
	f.DurationVar(&c.Timeout, "stripe.timeout", 10*time.Second, "Timeout for requests to the Stripe API")
}

// Client defines an interface to access the Stripe API.
type Client interface {
	GetCharge(ctx context.Context, chargeID string) (*Charge, error)
}

// Stripe implements Client.
type Stripe struct {
	*common.JSONClient
	cfg Config
}

type authClient struct {
	cl  client.Requester
	key string
}

func (a authClient) Do(r *http.Request) (*http.Response, error) {
	r.Header.Set("Authorization", "Bearer "+a.key)
	return a.cl.Do(r)
}

// New returns a Stripe. If httpClient is nil, http.Client is instantiated
// with the configured timeout.
func New(cfg Config, httpClient client.Requester) *Stripe {
	if !strings.HasSuffix(cfg.Endpoint, "/") {
		cfg.Endpoint += "/"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	httpClient = authClient{cl: httpClient, key: cfg.APIKey}
	return &Stripe{
		JSONClient: common.NewJSONClient(client.NewTimedClient(httpClient, clientRequestCollector)),
		cfg:        cfg,
	}
}

// URL on the Stripe API.
func (s *Stripe) URL(format string, components ...interface{}) string {
	return s.cfg.Endpoint + fmt.Sprintf(format, components...)
}

// GetCharge retrieves a charge by its ID.
func (s *Stripe) GetCharge(ctx context.Context, chargeID string) (*Charge, error) {
	if chargeID == "" {
		return nil, ErrInvalidChargeID
	}
	charge := &Charge{}
	if err := s.Get(ctx, "GetCharge", s.URL("charges/%s", chargeID), charge); err != nil {
		if status, ok := err.(*common.StatusError); ok && status.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return charge, nil
}

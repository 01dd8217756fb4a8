// Package airtable is a client for the Airtable REST API, scoped to what the
// record sink needs: creating rows in the failed-payments table and probing
// that the table exists.
package airtable

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
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
	Subsystem: "airtable_client",
	Name:      "request_duration_seconds",
	Help:      "Response time of Airtable requests.",
})

func init() {
	clientRequestCollector.Register()
}

// Config provides the values necessary to create an Airtable client.
type Config struct {
	APIKey   string
	BaseID   string
	Table    string
	Endpoint string
	Timeout  time.Duration
}

// RegisterFlags registers flags to configure an Airtable client. Defaults
// come from the environment so the service can be configured without flags.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.APIKey, "airtable.api-key", os.Getenv("AIRTABLE_API_KEY"), "API key for Airtable")
	f.StringVar(&c.BaseID, "airtable.base-id", os.Getenv("AIRTABLE_BASE_ID"), "Airtable base (workspace) identifier")
	f.StringVar(&c.Table, "airtable.table", tableFromEnv(), "Airtable table holding failed payment records")
	f.StringVar(&c.Endpoint, "airtable.endpoint", "https://api.airtable.com/v0/", "Endpoint for the Airtable API")
	f.DurationVar(&c.Timeout, "airtable.timeout", 10*time.Second, "Timeout for requests to the Airtable API")
}

func tableFromEnv() string {
	if t := os.Getenv("AIRTABLE_TABLE"); t != "" {
		return t
	}
	return "Failed Payments"
}

// Client defines an interface to access the Airtable API.
type Client interface {
	CreateRecord(ctx context.Context, fields Fields) error
	TableExists(ctx context.Context) (bool, error)
}

// Fields is the column/value mapping of one Airtable record.
type Fields map[string]interface{}

type record struct {
	Fields Fields `json:"fields"`
}

type createRequest struct {
	Records []record `json:"records"`
}

type createResponse struct {
	Records []struct {
		ID string `json:"id"`
	} `json:"records"`
}

// Airtable implements Client.
type Airtable struct {
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

// New returns an Airtable. If httpClient is nil, http.Client is instantiated
// with the configured timeout.
func New(cfg Config, httpClient client.Requester) *Airtable {
	if !strings.HasSuffix(cfg.Endpoint, "/") {
		cfg.Endpoint += "/"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	httpClient = authClient{cl: httpClient, key: cfg.APIKey}
	return &Airtable{
		JSONClient: common.NewJSONClient(client.NewTimedClient(httpClient, clientRequestCollector)),
		cfg:        cfg,
	}
}

func (a *Airtable) tableURL() string {
	return fmt.Sprintf("%s%s/%s", a.cfg.Endpoint, a.cfg.BaseID, url.PathEscape(a.cfg.Table))
}

// CreateRecord appends one record to the configured table.
func (a *Airtable) CreateRecord(ctx context.Context, fields Fields) error {
	resp := &createResponse{}
	req := &createRequest{Records: []record{{Fields: fields}}}
	if err := a.Post(ctx, "CreateRecord", a.tableURL(), req, resp); err != nil {
		return err
	}
	if len(resp.Records) == 0 {
		return ErrNoRecordCreated
	}
	return nil
}

// TableExists probes the configured table with a single-record listing. The
// Airtable API offers no table creation, so absence can only be reported, not
// repaired.
func (a *Airtable) TableExists(ctx context.Context) (bool, error) {
	err := a.Get(ctx, "TableExists", a.tableURL()+"?maxRecords=1", &struct{}{})
	if err == nil {
		return true, nil
	}
	if status, ok := err.(*common.StatusError); ok {
		if status.Code == http.StatusNotFound || status.Code == http.StatusForbidden {
			return false, nil
		}
	}
	return false, err
}

// ErrNoRecordCreated means Airtable accepted the request but reported no
// created records.
var ErrNoRecordCreated = fmt.Errorf("no record created")

package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/weaveworks/common/http/client"
)

// JSONClient embeds a client to make requests and unmarshals JSON responses
// into an expected struct.
type JSONClient struct {
	cl client.Requester
}

// NewJSONClient creates a JSONClient. The `client` is for making requests.
func NewJSONClient(client client.Requester) *JSONClient {
	return &JSONClient{client}
}

// Get does a GET request and unmarshals the response into dest.
func (c *JSONClient) Get(ctx context.Context, operation, url string, dest interface{}) error {
	r, err := c.send(ctx, operation, "GET", url, nil)
	if err != nil {
		return err
	}
	return c.parseJSON(r, dest)
}

// Post does a POST request with a JSON body and unmarshals the response into
// dest.
func (c *JSONClient) Post(ctx context.Context, operation, url string, data interface{}, dest interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	r, err := c.send(ctx, operation, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.parseJSON(r, dest)
}

// Do executes the given request. It embeds the context into the request and
// ties the operation name to it.
func (c *JSONClient) Do(ctx context.Context, operation string, r *http.Request) (*http.Response, error) {
	if operation != "" {
		ctx = context.WithValue(ctx, client.OperationNameContextKey, operation)
	}
	r = r.WithContext(ctx)
	return c.cl.Do(r)
}

func (c *JSONClient) parseJSON(resp *http.Response, dest interface{}) error {
	defer resp.Body.Close()
	var err error
	if dest != nil {
		// Read body even on error status since it may contain further information
		err = json.NewDecoder(resp.Body).Decode(dest)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return err
}

func (c *JSONClient) send(ctx context.Context, operation, method, url string, body io.Reader) (*http.Response, error) {
	r, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Content-Type", "application/json")
	return c.Do(ctx, operation, r)
}

// StatusError is returned for non-2xx responses so callers can branch on the
// HTTP status code.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Status)
}

package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"trip-route-service/internal/platform/httpx"
)

const (
	maxAttempts    = 4
	initialBackoff = 200 * time.Millisecond
	defaultTimeout = 10 * time.Second
)

func newClient(timeout time.Duration, opts ...httpx.Option) *httpx.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opts = append(opts, httpx.WithRetry(maxAttempts, initialBackoff))
	return httpx.New(timeout, opts...)
}

// getJSON issues a GET with retries and decodes the body into out.
func getJSON(ctx context.Context, c *httpx.Client, endpoint string, q url.Values, out any) error {
	resp, err := c.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("execute request: %w", redactQuery(err))
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// redactQuery drops the query string from transport errors. Some providers
// take the API key as a query parameter and the error text ends up in logs.
func redactQuery(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		ue.URL = "[redacted]"
		return err
	}
	if u.RawQuery != "" {
		u.RawQuery = "[redacted]"
	}
	ue.URL = u.String()
	return err
}

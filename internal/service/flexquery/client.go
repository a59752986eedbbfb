package flexquery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/gommon/random"
)

// DefaultBaseURL is the production Flexible Query API location.
const DefaultBaseURL = "https://di.unfccc.int/api/"

const (
	retryInterval = 500 * time.Millisecond
	maxRetries    = 5
)

// Client is the thin HTTP transport for the Flexible Query API. It retries
// network errors and server-side failures with a constant backoff and
// surfaces everything else to the caller unchanged.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) getJSON(ctx context.Context, component string, out interface{}) error {
	return c.do(ctx, http.MethodGet, component, nil, out)
}

func (c *Client) postJSON(ctx context.Context, component string, body interface{}, out interface{}) error {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("sonic.Marshal: %w", err)
	}
	return c.do(ctx, http.MethodPost, component, payload, out)
}

func (c *Client) do(ctx context.Context, method, component string, payload []byte, out interface{}) error {
	requestID := random.String(16)

	var raw []byte
	err := backoff.Retry(
		func() error {
			var reqBody io.Reader
			if payload != nil {
				reqBody = strings.NewReader(string(payload))
			}

			req, err := http.NewRequestWithContext(ctx, method, c.baseURL+component, reqBody)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("http.NewRequestWithContext: %w", err))
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("X-Request-ID", requestID)
			if payload != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return fmt.Errorf("httpc.Do: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
			}
			if resp.StatusCode != http.StatusOK {
				return backoff.Permanent(fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status))
			}

			raw, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("io.ReadAll: %w", err)
			}
			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), maxRetries),
			ctx,
		),
	)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, component, err)
	}

	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: sonic.Unmarshal: %w", method, component, err)
	}
	return nil
}

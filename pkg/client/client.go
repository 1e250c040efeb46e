package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/weiihann/ecoquest-analytics/pkg/analytics"
)

// AnalyticsPath is appended to the configured base URL.
const AnalyticsPath = "/api/analytics/"

// ClientInterface defines the operations the poller needs from the analytics backend
type ClientInterface interface {
	FetchSnapshot(ctx context.Context) (*analytics.Snapshot, error)
}

type Client struct {
	http     *http.Client
	endpoint string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// FetchError is returned for every transport, status or decode failure. Its
// message is the string shown in place of the dashboard.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var ErrEmptyBaseURL = errors.New("analytics base URL is empty")

type envelope struct {
	Data *analytics.Snapshot `json:"data"`
}

// NewClient builds a client for {baseURL}/api/analytics/.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	endpoint, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}, nil
}

// Endpoint joins the base URL with the analytics path, tolerating a trailing slash.
func Endpoint(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", ErrEmptyBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid analytics base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid analytics base URL %q: scheme must be http or https", baseURL)
	}

	return strings.TrimRight(baseURL, "/") + AnalyticsPath, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchSnapshot performs one GET against the analytics endpoint. A missing
// "data" member decodes to an empty snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (*analytics.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &FetchError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "fetch analytics", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Op: "fetch analytics", StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &FetchError{Op: "decode analytics", Err: err}
	}

	if env.Data == nil {
		return &analytics.Snapshot{}, nil
	}
	return env.Data, nil
}

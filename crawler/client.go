package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"opendirindex/api"
	"opendirindex/logging"
)

// Client handles HTTP requests for crawling. It also satisfies
// parser.HTTPClient, so the same client that fetches a directory page is the
// one the parser core uses for its own sourcemap and Model-01 JSON subfetches.
type Client struct {
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a new crawler client
func NewClient(timeoutSeconds int, logger *logging.Logger) *Client {
	client := &http.Client{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Don't follow redirects
			return http.ErrUseLastResponse
		},
	}

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; opendirindex/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return req, nil
}

// Get implements parser.HTTPClient for the core's own subfetches.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := c.newRequest(ctx, "GET", rawURL)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// CheckHostAndFetch checks whether a host is reachable and, if so, returns
// its body in one round trip. A non-200 response or a transport error is
// reported as offline rather than as an error, matching the teacher's
// distinction between "could not connect" and "genuine failure".
func (c *Client) CheckHostAndFetch(host api.Host) (bool, string, error) {
	c.logger.Debug("Fetching: %s", host.URL)

	ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
	defer cancel()

	resp, err := c.Get(ctx, host.URL)
	if err != nil {
		c.logger.Debug("Host offline or unreachable: %s (%s)", host.URL, err)
		return false, "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Host responded with non-OK status: %s (Status: %d)", host.URL, resp.StatusCode)
		return false, "", nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return true, string(bodyBytes), nil
}

// ServerHeader sends a HEAD request to rawURL and returns its Server header,
// used as the optional dispatch hint the parser core accepts.
func (c *Client) ServerHeader(ctx context.Context, rawURL string) string {
	req, err := c.newRequest(ctx, "HEAD", rawURL)
	if err != nil {
		return ""
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	return resp.Header.Get("Server")
}

package papersources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies the service to providers that require it.
	DefaultUserAgent = "ResearchMetadataAPI/1.0"

	maxResponseBytes = 10 << 20
	maxErrorBodySize = 4 << 10
)

// HTTPClientConfig configures the HTTP client.
type HTTPClientConfig struct {
	// Provider labels observed requests (e.g. "openalex").
	Provider string

	// Timeout is the bound on one request including reading the body.
	Timeout time.Duration

	// RateLimit is the maximum requests per second sent to the provider.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// Observer receives request outcomes. Optional.
	Observer RequestObserver
}

// HTTPClient wraps http.Client with a timeout, polite pacing and a fixed
// User-Agent. It makes exactly one attempt per call. It is safe for
// concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	config      HTTPClientConfig
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// NewHTTPClient creates a new HTTP client, applying defaults to unset fields.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		config:      cfg,
	}
}

// Do executes req once after waiting for the rate limiter.
// The User-Agent header is set unless the request already carries one.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	if err := c.rateLimiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	return c.client.Do(req)
}

// GetJSON issues a GET for rawURL and decodes a 2xx response into out.
// Any other status returns a *StatusError. endpoint labels the call for the
// observer (e.g. "search", "lookup").
func (c *HTTPClient) GetJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	start := time.Now()
	observe := func(outcome string) {
		c.config.Observer.ObserveUpstreamRequest(c.config.Provider, endpoint, outcome, time.Since(start).Seconds())
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		if isTimeout(err) {
			observe(OutcomeTimeout)
		} else {
			observe(OutcomeTransportError)
		}
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if resp.StatusCode == http.StatusNotFound {
			observe(OutcomeNotFound)
		} else {
			observe(OutcomeHTTPError)
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		if isTimeout(err) {
			observe(OutcomeTimeout)
		} else {
			observe(OutcomeDecodeError)
		}
		return fmt.Errorf("decoding response: %w", err)
	}

	observe(OutcomeSuccess)
	return nil
}

// Timeout returns the per-call bound.
func (c *HTTPClient) Timeout() time.Duration {
	return c.config.Timeout
}

// UserAgent returns the User-Agent header value sent with requests.
func (c *HTTPClient) UserAgent() string {
	return c.config.UserAgent
}

// UserAgentWithContact appends a mailto contact to base, the form polite
// pools of scholarly APIs ask for.
func UserAgentWithContact(base, email string) string {
	if base == "" {
		base = DefaultUserAgent
	}
	if email == "" {
		return base
	}
	return base + " (mailto:" + email + ")"
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

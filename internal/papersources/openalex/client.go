package openalex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/research-metadata-api/internal/domain"
	"github.com/helixir/research-metadata-api/internal/observability"
	"github.com/helixir/research-metadata-api/internal/papersources"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// OpenAlex asks polite-pool clients to stay at or below 10 req/sec.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxPerPage caps the page size requested from OpenAlex.
	DefaultMaxPerPage = 25
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool. It is sent as the
	// mailto query parameter and inside the User-Agent.
	// See: https://docs.openalex.org/how-to-use-the-api/rate-limits-and-authentication
	Email string

	// UserAgent is the product token of the User-Agent header.
	UserAgent string

	// Timeout is the request timeout.
	// Defaults to 15 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxPerPage caps per-page on search requests. Defaults to 25.
	MaxPerPage int

	// Observer receives request outcomes for metrics. Optional.
	Observer papersources.RequestObserver

	// Logger receives warnings about failed upstream calls.
	Logger zerolog.Logger
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxPerPage == 0 {
		c.MaxPerPage = DefaultMaxPerPage
	}
}

// Client implements the papersources.PaperSource interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
	logger     zerolog.Logger
}

// Ensure Client implements PaperSource interface.
var _ papersources.PaperSource = (*Client)(nil)

// New creates a new OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Provider:  domain.ProviderOpenAlex.String(),
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: papersources.UserAgentWithContact(cfg.UserAgent, cfg.Email),
		Observer:  cfg.Observer,
	})

	return NewWithHTTPClient(cfg, httpClient)
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Search queries OpenAlex for one page of works and returns the normalized
// records that carry a DOI.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) ([]domain.CanonicalPaper, error) {
	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	var resp SearchResponse
	if err := c.httpClient.GetJSON(ctx, "search", searchURL, &resp); err != nil {
		return nil, c.upstreamFailure("search", err)
	}

	papers := make([]domain.CanonicalPaper, 0, len(resp.Results))
	for _, work := range resp.Results {
		papers = append(papers, Normalize(work))
	}

	return domain.FilterWithDOI(papers), nil
}

// LookupDOI fetches the work with the given DOI using the doi filter.
// An empty result set is reported as domain.ErrNotFound.
func (c *Client) LookupDOI(ctx context.Context, doi string) (*domain.CanonicalPaper, error) {
	lookupURL, err := c.buildLookupURL(doi)
	if err != nil {
		return nil, fmt.Errorf("building lookup URL: %w", err)
	}

	var resp SearchResponse
	if err := c.httpClient.GetJSON(ctx, "lookup", lookupURL, &resp); err != nil {
		if papersources.IsNotFoundStatus(err) {
			return nil, domain.NewNotFoundError("paper", doi)
		}
		return nil, c.upstreamFailure("lookup", err)
	}

	if len(resp.Results) == 0 {
		return nil, domain.NewNotFoundError("paper", doi)
	}

	paper := Normalize(resp.Results[0])
	return &paper, nil
}

// Provider returns the provider identifier.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderOpenAlex
}

func (c *Client) upstreamFailure(endpoint string, err error) error {
	wrapped := papersources.WrapUpstream(domain.ProviderOpenAlex, err)

	logger := observability.WithProviderContext(c.logger, domain.ProviderOpenAlex.String(), endpoint)
	event := logger.Warn().Err(err)
	if upstream, ok := wrapped.(*domain.UpstreamError); ok && upstream.StatusCode != 0 {
		event = event.Int("status", upstream.StatusCode)
	}
	event.Msg("openalex request failed")

	return wrapped
}

// buildSearchURL constructs the /works search URL.
func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	u, err := c.worksURL()
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("search", params.Query)
	query.Set("per-page", strconv.Itoa(c.perPage(params.MaxResults)))

	if filter := yearFilter(params.Years); filter != "" {
		query.Set("filter", filter)
	}

	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// buildLookupURL constructs the /works?filter=doi:<doi> URL. OpenAlex
// matches DOIs case-insensitively only in their lowercased form.
func (c *Client) buildLookupURL(doi string) (string, error) {
	u, err := c.worksURL()
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("filter", "doi:"+strings.ToLower(doi))

	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}

func (c *Client) worksURL() (*url.URL, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	return base.JoinPath("works"), nil
}

func (c *Client) perPage(requested int) int {
	if requested <= 0 || requested > c.config.MaxPerPage {
		return c.config.MaxPerPage
	}
	return requested
}

// yearFilter renders the publication_year range filter. An unset lower
// bound becomes 0 and an unset upper bound 9999.
func yearFilter(years domain.YearRange) string {
	switch {
	case years.HasFrom() && years.HasTo():
		return fmt.Sprintf("publication_year:%d-%d", years.From, years.To)
	case years.HasFrom():
		return fmt.Sprintf("publication_year:%d-9999", years.From)
	case years.HasTo():
		return fmt.Sprintf("publication_year:0-%d", years.To)
	default:
		return ""
	}
}

// Normalize converts an OpenAlex work to a CanonicalPaper. Title, year and
// DOI are taken as returned; authors without a display name are skipped.
func Normalize(work Work) domain.CanonicalPaper {
	authors := make([]string, 0, len(work.Authorships))
	for _, authorship := range work.Authorships {
		if authorship.Author == nil || authorship.Author.DisplayName == nil {
			continue
		}
		if name := *authorship.Author.DisplayName; name != "" {
			authors = append(authors, name)
		}
	}

	doi := work.DOI
	if doi != nil && *doi == "" {
		doi = nil
	}

	return domain.CanonicalPaper{
		Title:   work.Title,
		Authors: authors,
		Year:    work.PublicationYear,
		DOI:     doi,
	}
}

package crossref

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
	// DefaultBaseURL is the default Crossref API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxPerPage caps the rows requested from Crossref.
	DefaultMaxPerPage = 25
)

// Config holds configuration for the Crossref client.
type Config struct {
	// BaseURL is the Crossref API base URL.
	// Defaults to https://api.crossref.org
	BaseURL string

	// Email is the contact email that routes requests to the polite pool.
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

	// MaxPerPage caps rows on search requests. Defaults to 25.
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

// Client implements the papersources.PaperSource interface for Crossref.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
	logger     zerolog.Logger
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates a new Crossref client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Provider:  domain.ProviderCrossref.String(),
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: papersources.UserAgentWithContact(cfg.UserAgent, cfg.Email),
		Observer:  cfg.Observer,
	})

	return NewWithHTTPClient(cfg, httpClient)
}

// NewWithHTTPClient creates a new Crossref client with a custom HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Search queries Crossref for one page of works and returns the normalized
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

	if resp.Message == nil {
		return []domain.CanonicalPaper{}, nil
	}

	papers := make([]domain.CanonicalPaper, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		papers = append(papers, Normalize(item))
	}

	return domain.FilterWithDOI(papers), nil
}

// LookupDOI fetches /works/{doi}. A 404 or an empty message is reported as
// domain.ErrNotFound.
func (c *Client) LookupDOI(ctx context.Context, doi string) (*domain.CanonicalPaper, error) {
	lookupURL, err := c.buildLookupURL(doi)
	if err != nil {
		return nil, fmt.Errorf("building lookup URL: %w", err)
	}

	var resp WorkResponse
	if err := c.httpClient.GetJSON(ctx, "lookup", lookupURL, &resp); err != nil {
		if papersources.IsNotFoundStatus(err) {
			return nil, domain.NewNotFoundError("paper", doi)
		}
		return nil, c.upstreamFailure("lookup", err)
	}

	if resp.Message == nil || resp.Message.isEmpty() {
		return nil, domain.NewNotFoundError("paper", doi)
	}

	paper := Normalize(*resp.Message)
	return &paper, nil
}

// Provider returns the provider identifier.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderCrossref
}

func (c *Client) upstreamFailure(endpoint string, err error) error {
	wrapped := papersources.WrapUpstream(domain.ProviderCrossref, err)

	logger := observability.WithProviderContext(c.logger, domain.ProviderCrossref.String(), endpoint)
	event := logger.Warn().Err(err)
	if upstream, ok := wrapped.(*domain.UpstreamError); ok && upstream.StatusCode != 0 {
		event = event.Int("status", upstream.StatusCode)
	}
	event.Msg("crossref request failed")

	return wrapped
}

func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	u := base.JoinPath("works")

	query := url.Values{}
	query.Set("query", params.Query)
	query.Set("rows", strconv.Itoa(c.rows(params.MaxResults)))

	if filter := dateFilter(params.Years); filter != "" {
		query.Set("filter", filter)
	}

	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// buildLookupURL places the DOI in the path as is; its slash separates the
// registrant prefix from the suffix and Crossref expects it unescaped.
func (c *Client) buildLookupURL(doi string) (string, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	u := base.JoinPath("works", doi)

	if c.config.Email != "" {
		query := url.Values{}
		query.Set("mailto", c.config.Email)
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}

func (c *Client) rows(requested int) int {
	if requested <= 0 || requested > c.config.MaxPerPage {
		return c.config.MaxPerPage
	}
	return requested
}

// dateFilter renders from-pub-date/until-pub-date for whichever bounds are set.
func dateFilter(years domain.YearRange) string {
	var filters []string
	if years.HasFrom() {
		filters = append(filters, fmt.Sprintf("from-pub-date:%d", years.From))
	}
	if years.HasTo() {
		filters = append(filters, fmt.Sprintf("until-pub-date:%d", years.To))
	}
	return strings.Join(filters, ",")
}

// Normalize converts a Crossref item to a CanonicalPaper. The bare DOI is
// rewritten as a doi.org URL so it lines up with OpenAlex records.
func Normalize(item Item) domain.CanonicalPaper {
	paper := domain.CanonicalPaper{
		Authors: make([]string, 0, len(item.Author)),
	}

	if len(item.Title) > 0 {
		paper.Title = domain.StringPtr(item.Title[0])
	}

	for _, a := range item.Author {
		if name := strings.TrimSpace(a.Given + " " + a.Family); name != "" {
			paper.Authors = append(paper.Authors, name)
		}
	}

	if item.Issued != nil && len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		if year := item.Issued.DateParts[0][0]; year.Valid {
			paper.Year = domain.IntPtr(year.Value)
		}
	}

	if item.DOI != "" {
		paper.DOI = domain.StringPtr(domain.DOIResolverPrefix + item.DOI)
	}

	return paper
}

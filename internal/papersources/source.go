// Package papersources defines the contract shared by the upstream
// bibliographic providers and the plumbing they have in common: an outbound
// HTTP client and an ordered fan-out registry.
//
// Each provider package (openalex, crossref) fetches raw JSON and hands it to
// its own pure normalizer, which produces domain.CanonicalPaper records.
//
// Example usage:
//
//	registry := papersources.NewRegistry(true, openalex.New(oaCfg), crossref.New(crCfg))
//	results := registry.SearchAll(ctx, papersources.SearchParams{
//		Query:      "perovskite solar cells",
//		MaxResults: 10,
//	})
//	papers, err := papersources.Merge(results)
package papersources

import (
	"context"

	"github.com/helixir/research-metadata-api/internal/domain"
)

// SearchParams defines the parameters for a single-page provider search.
type SearchParams struct {
	// Query is the free-text search query (required).
	Query string

	// Years optionally bounds the publication year. Zero bounds are unset.
	Years domain.YearRange

	// MaxResults is the number of records requested from the provider.
	// Providers cap it at their own page size.
	MaxResults int
}

// PaperSource is implemented by every upstream provider client.
type PaperSource interface {
	// Search returns the normalized, DOI-bearing records of one result page.
	// A response with zero results is not an error.
	Search(ctx context.Context, params SearchParams) ([]domain.CanonicalPaper, error)

	// LookupDOI returns the record for an exact DOI. It returns an error
	// wrapping domain.ErrNotFound when the provider has no such record.
	LookupDOI(ctx context.Context, doi string) (*domain.CanonicalPaper, error)

	// Provider identifies the source in responses, logs and metrics.
	Provider() domain.Provider
}

// RequestObserver receives the outcome of every upstream HTTP call.
type RequestObserver interface {
	ObserveUpstreamRequest(provider, endpoint, outcome string, seconds float64)
}

// Request outcomes reported to a RequestObserver.
const (
	OutcomeSuccess        = "success"
	OutcomeNotFound       = "not_found"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeTimeout        = "timeout"
	OutcomeDecodeError    = "decode_error"
)

type nopObserver struct{}

func (nopObserver) ObserveUpstreamRequest(string, string, string, float64) {}

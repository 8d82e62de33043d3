// Package aggregator runs the request pipelines behind the HTTP API: fan a
// query out to the paper sources, merge their pages in provider order,
// deduplicate by DOI, and either truncate the result list or extract n-gram
// trends from it. It also resolves single DOIs against the sources in order.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/research-metadata-api/internal/dedup"
	"github.com/helixir/research-metadata-api/internal/domain"
	"github.com/helixir/research-metadata-api/internal/observability"
	"github.com/helixir/research-metadata-api/internal/papersources"
	"github.com/helixir/research-metadata-api/internal/trends"
)

// SourceRegistry is the part of papersources.Registry the service needs.
// It decouples the service from the concrete registry for tests.
type SourceRegistry interface {
	SearchAll(ctx context.Context, params papersources.SearchParams) []papersources.SourceResult
	Sources() []papersources.PaperSource
}

// Options tunes the pipelines.
type Options struct {
	// PerYearTop caps the per-year n-gram cutoff. Defaults to trends.MaxPerYearTop.
	PerYearTop int
}

// Service implements search, trends and lookup.
type Service struct {
	registry SourceRegistry
	metrics  *observability.Metrics
	logger   zerolog.Logger
	opts     Options

	// report builds the trends report; replaced in tests.
	report func(papers []domain.CanonicalPaper, top, perYearTop int) *TrendsReport
}

// New creates a Service. The metrics parameter may be nil (metrics recording
// will be skipped).
func New(registry SourceRegistry, metrics *observability.Metrics, logger zerolog.Logger, opts Options) *Service {
	if opts.PerYearTop <= 0 || opts.PerYearTop > trends.MaxPerYearTop {
		opts.PerYearTop = trends.MaxPerYearTop
	}
	return &Service{
		registry: registry,
		metrics:  metrics,
		logger:   observability.WithComponent(logger, "aggregator"),
		opts:     opts,
		report:   buildReport,
	}
}

// TrendsReport is the outcome of a trends computation.
type TrendsReport struct {
	// TotalPapers is the number of papers after deduplication.
	TotalPapers int

	// Top is the global cutoff that was applied.
	Top int

	// Global holds the n-grams over all titles.
	Global domain.NGrams

	// PerYear holds the per-year n-grams, ascending by year.
	PerYear []domain.YearTrends
}

// LookupResult is a resolved DOI.
type LookupResult struct {
	Source domain.Provider
	Paper  domain.CanonicalPaper
}

// Search asks each source for max(1, limit/2) records, merges them in
// provider order, removes DOI duplicates and returns at most limit papers.
func (s *Service) Search(ctx context.Context, query string, years domain.YearRange, limit int) ([]domain.CanonicalPaper, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	perProvider := max(1, limit/2)
	papers, err := s.fetch(ctx, papersources.SearchParams{
		Query:      query,
		Years:      years,
		MaxResults: perProvider,
	})
	if err != nil {
		return nil, err
	}

	unique := s.deduplicate(papers)
	if limit >= 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique, nil
}

// Trends asks each source for limit records, merges and deduplicates them,
// and computes global n-grams at top and per-year n-grams at min(5, top).
func (s *Service) Trends(ctx context.Context, query string, years domain.YearRange, limit, top int) (*TrendsReport, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	papers, err := s.fetch(ctx, papersources.SearchParams{
		Query:      query,
		Years:      years,
		MaxResults: limit,
	})
	if err != nil {
		return nil, err
	}

	unique := s.deduplicate(papers)

	report, err := s.computeTrends(unique, top)
	if err != nil {
		logger := observability.LoggerFromContext(ctx, s.logger)
		logger.Error().Err(err).Msg("trend computation failed")
		if s.metrics != nil {
			s.metrics.RecordInternalError("trends")
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTrendComputation()
	}
	return report, nil
}

// computeTrends builds the report. A panic in the extractor is returned as
// an InternalError.
func (s *Service) computeTrends(papers []domain.CanonicalPaper, top int) (report *TrendsReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = domain.NewInternalError("computing trends", fmt.Errorf("panic: %v", r))
		}
	}()

	perYearTop := min(trends.PerYearCutoff(top), s.opts.PerYearTop)
	return s.report(papers, top, perYearTop), nil
}

func buildReport(papers []domain.CanonicalPaper, top, perYearTop int) *TrendsReport {
	return &TrendsReport{
		TotalPapers: len(papers),
		Top:         top,
		Global:      trends.Extract(trends.Titles(papers), top),
		PerYear:     trends.PerYear(papers, perYearTop),
	}
}

// Lookup resolves doi against the sources in registration order. A
// not-found answer moves on to the next source; any other failure stops the
// lookup and is returned as an upstream error for that source.
func (s *Service) Lookup(ctx context.Context, doi string) (*LookupResult, error) {
	clean := domain.CleanDOI(doi)
	if clean == "" {
		return nil, domain.NewValidationError("doi", "must not be empty")
	}

	logger := observability.LoggerFromContext(ctx, s.logger).With().Str("doi", clean).Logger()

	for _, src := range s.registry.Sources() {
		paper, err := src.LookupDOI(ctx, clean)
		if err == nil {
			logger.Debug().Str("provider", src.Provider().String()).Msg("doi resolved")
			if s.metrics != nil {
				s.metrics.RecordLookup(src.Provider().String())
			}
			return &LookupResult{Source: src.Provider(), Paper: *paper}, nil
		}

		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug().Str("provider", src.Provider().String()).Msg("doi not found at provider")
			continue
		}

		return nil, asUpstream(src.Provider(), err)
	}

	if s.metrics != nil {
		s.metrics.RecordLookup("none")
	}
	return nil, domain.NewNotFoundError("paper", clean)
}

// fetch runs one search round across all sources and merges the pages.
// The first failure in provider order aborts the request.
func (s *Service) fetch(ctx context.Context, params papersources.SearchParams) ([]domain.CanonicalPaper, error) {
	logger := observability.WithQueryContext(
		observability.LoggerFromContext(ctx, s.logger),
		params.Query, params.Years.From, params.Years.To,
	)

	start := time.Now()
	results := s.registry.SearchAll(ctx, params)

	for i, res := range results {
		if res.Err != nil {
			results[i].Err = asUpstream(res.Provider, res.Err)
			logger.Warn().Err(res.Err).Str("provider", res.Provider.String()).Msg("provider search failed")
			continue
		}
		if s.metrics != nil {
			s.metrics.RecordPapersFetched(res.Provider.String(), len(res.Papers))
		}
	}

	papers, err := papersources.Merge(results)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("papers", len(papers)).
		Dur("duration", time.Since(start)).
		Msg("providers searched")

	return papers, nil
}

func (s *Service) deduplicate(papers []domain.CanonicalPaper) []domain.CanonicalPaper {
	res := dedup.ByDOIWithStats(papers)
	if s.metrics != nil && res.Removed > 0 {
		s.metrics.RecordDuplicatesRemoved(res.Removed)
	}
	return res.Papers
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return domain.NewValidationError("query", "must not be empty")
	}
	return nil
}

// asUpstream makes sure a provider failure carries the provider identity.
func asUpstream(provider domain.Provider, err error) error {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return err
	}
	return papersources.WrapUpstream(provider, err)
}

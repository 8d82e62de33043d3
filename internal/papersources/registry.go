package papersources

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/helixir/research-metadata-api/internal/domain"
)

// SourceResult holds the result of a search from one source.
type SourceResult struct {
	// Provider identifies which paper source produced the result.
	Provider domain.Provider

	// Papers contains the normalized records. Nil if Err is non-nil.
	Papers []domain.CanonicalPaper

	// Err contains the error if the search failed.
	Err error
}

// Registry holds the paper sources in a fixed order and fans searches out
// to them. The order of registration is the order of merged results and the
// order in which lookups and errors are considered.
type Registry struct {
	sources    []PaperSource
	concurrent bool
}

// NewRegistry creates a registry over sources. When concurrent is true,
// SearchAll queries all sources at once; otherwise one after another.
func NewRegistry(concurrent bool, sources ...PaperSource) *Registry {
	return &Registry{
		sources:    append([]PaperSource(nil), sources...),
		concurrent: concurrent,
	}
}

// Sources returns the registered sources in order.
func (r *Registry) Sources() []PaperSource {
	return append([]PaperSource(nil), r.sources...)
}

// Concurrent reports whether searches run in parallel.
func (r *Registry) Concurrent() bool {
	return r.concurrent
}

// SearchAll runs params against every source and returns one result per
// source in registration order. A failing source does not cancel the others;
// callers decide what to do with the errors.
func (r *Registry) SearchAll(ctx context.Context, params SearchParams) []SourceResult {
	results := make([]SourceResult, len(r.sources))

	if !r.concurrent {
		for i, s := range r.sources {
			results[i] = searchOne(ctx, s, params)
		}
		return results
	}

	// Each goroutine owns its slot, so no locking is needed.
	var g errgroup.Group
	for i, s := range r.sources {
		g.Go(func() error {
			results[i] = searchOne(ctx, s, params)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func searchOne(ctx context.Context, s PaperSource, params SearchParams) SourceResult {
	papers, err := s.Search(ctx, params)
	if err != nil {
		return SourceResult{Provider: s.Provider(), Err: err}
	}
	return SourceResult{Provider: s.Provider(), Papers: papers}
}

// Merge concatenates the papers of results in order. If any result failed,
// the first error in order is returned and no papers.
func Merge(results []SourceResult) ([]domain.CanonicalPaper, error) {
	total := 0
	for _, res := range results {
		if res.Err != nil {
			return nil, res.Err
		}
		total += len(res.Papers)
	}

	merged := make([]domain.CanonicalPaper, 0, total)
	for _, res := range results {
		merged = append(merged, res.Papers...)
	}
	return merged, nil
}

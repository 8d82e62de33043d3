package papersources

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/research-metadata-api/internal/domain"
)

// fakeSource is a scripted PaperSource.
type fakeSource struct {
	provider domain.Provider
	papers   []domain.CanonicalPaper
	err      error
	delay    time.Duration
	calls    int32
	params   SearchParams
}

func (f *fakeSource) Search(ctx context.Context, params SearchParams) ([]domain.CanonicalPaper, error) {
	atomic.AddInt32(&f.calls, 1)
	f.params = params
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.papers, nil
}

func (f *fakeSource) LookupDOI(context.Context, string) (*domain.CanonicalPaper, error) {
	return nil, domain.NewNotFoundError("paper", "")
}

func (f *fakeSource) Provider() domain.Provider { return f.provider }

func paper(title string) domain.CanonicalPaper {
	return domain.CanonicalPaper{Title: domain.StringPtr(title), Authors: []string{}}
}

func TestRegistry_SearchAll(t *testing.T) {
	for _, concurrent := range []bool{true, false} {
		name := "sequential"
		if concurrent {
			name = "concurrent"
		}

		t.Run(name+" keeps registration order", func(t *testing.T) {
			oa := &fakeSource{
				provider: domain.ProviderOpenAlex,
				papers:   []domain.CanonicalPaper{paper("oa1"), paper("oa2")},
				delay:    30 * time.Millisecond,
			}
			cr := &fakeSource{
				provider: domain.ProviderCrossref,
				papers:   []domain.CanonicalPaper{paper("cr1")},
			}
			reg := NewRegistry(concurrent, oa, cr)
			params := SearchParams{Query: "graph", MaxResults: 5}

			results := reg.SearchAll(context.Background(), params)

			require.Len(t, results, 2)
			assert.Equal(t, domain.ProviderOpenAlex, results[0].Provider)
			assert.Equal(t, domain.ProviderCrossref, results[1].Provider)
			assert.Equal(t, params, oa.params)
			assert.Equal(t, params, cr.params)

			merged, err := Merge(results)
			require.NoError(t, err)
			var titles []string
			for _, p := range merged {
				titles = append(titles, p.TitleText())
			}
			assert.Equal(t, []string{"oa1", "oa2", "cr1"}, titles)
		})

		t.Run(name+" failure does not stop the other source", func(t *testing.T) {
			oa := &fakeSource{provider: domain.ProviderOpenAlex, err: errors.New("down")}
			cr := &fakeSource{
				provider: domain.ProviderCrossref,
				papers:   []domain.CanonicalPaper{paper("cr1")},
				delay:    10 * time.Millisecond,
			}
			reg := NewRegistry(concurrent, oa, cr)

			results := reg.SearchAll(context.Background(), SearchParams{Query: "x"})

			require.Len(t, results, 2)
			assert.Error(t, results[0].Err)
			assert.NoError(t, results[1].Err)
			assert.Len(t, results[1].Papers, 1)
			assert.Equal(t, int32(1), atomic.LoadInt32(&cr.calls))
		})
	}
}

func TestRegistry_Sources(t *testing.T) {
	oa := &fakeSource{provider: domain.ProviderOpenAlex}
	cr := &fakeSource{provider: domain.ProviderCrossref}
	reg := NewRegistry(true, oa, cr)

	sources := reg.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, domain.ProviderOpenAlex, sources[0].Provider())
	assert.Equal(t, domain.ProviderCrossref, sources[1].Provider())
	assert.True(t, reg.Concurrent())

	sources[0] = cr
	assert.Equal(t, domain.ProviderOpenAlex, reg.Sources()[0].Provider(), "returned slice is a copy")
}

func TestMerge(t *testing.T) {
	t.Run("first error in order wins", func(t *testing.T) {
		first := errors.New("openalex failed")
		second := errors.New("crossref failed")

		papers, err := Merge([]SourceResult{
			{Provider: domain.ProviderOpenAlex, Err: first},
			{Provider: domain.ProviderCrossref, Err: second},
		})

		assert.Nil(t, papers)
		assert.Same(t, first, err)
	})

	t.Run("later error still fails the merge", func(t *testing.T) {
		failure := errors.New("crossref failed")

		papers, err := Merge([]SourceResult{
			{Provider: domain.ProviderOpenAlex, Papers: []domain.CanonicalPaper{paper("a")}},
			{Provider: domain.ProviderCrossref, Err: failure},
		})

		assert.Nil(t, papers)
		assert.Same(t, failure, err)
	})

	t.Run("no results gives empty slice", func(t *testing.T) {
		papers, err := Merge(nil)

		require.NoError(t, err)
		require.NotNil(t, papers)
		assert.Empty(t, papers)
	})
}

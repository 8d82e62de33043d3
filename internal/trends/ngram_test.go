package trends

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/research-metadata-api/internal/domain"
)

func terms(counts []domain.KeywordCount) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Term
	}
	return out
}

func TestUnigrams(t *testing.T) {
	titles := []string{
		"Graph Neural Networks for Chemistry",
		"",
		"Neural Networks in Vision",
		"Graph Transformers",
	}

	got := Unigrams(titles, 10)

	assert.Equal(t, []domain.KeywordCount{
		{Term: "graph", Count: 2},
		{Term: "neural", Count: 2},
		{Term: "networks", Count: 2},
		{Term: "chemistry", Count: 1},
		{Term: "vision", Count: 1},
		{Term: "transformers", Count: 1},
	}, got)
}

func TestUnigrams_TopCutoff(t *testing.T) {
	titles := []string{"alpha beta gamma", "beta gamma", "gamma"}

	got := Unigrams(titles, 2)

	assert.Equal(t, []domain.KeywordCount{
		{Term: "gamma", Count: 3},
		{Term: "beta", Count: 2},
	}, got)
}

func TestUnigrams_TiesKeepFirstSeenOrder(t *testing.T) {
	titles := []string{"zeta alpha", "mu alpha zeta", "omega"}

	got := Unigrams(titles, 3)

	// zeta and alpha both have 2; zeta was seen first.
	assert.Equal(t, []string{"zeta", "alpha", "omega"}, terms(got))
}

func TestBigrams(t *testing.T) {
	titles := []string{
		"Graph Neural Networks",
		"Neural Networks Explained",
	}

	got := Bigrams(titles, 10)

	assert.Equal(t, []domain.KeywordCount{
		{Term: "neural networks", Count: 2},
		{Term: "graph neural", Count: 1},
		{Term: "networks explained", Count: 1},
	}, got)
}

func TestTrigrams(t *testing.T) {
	titles := []string{
		"Large Language Models Reasoning Benchmarks",
		"Large Language Agents Reasoning Benchmarks",
	}

	got := Trigrams(titles, 10)

	// "models" is a stop word, so the first title has tokens
	// [large language reasoning benchmarks].
	assert.Equal(t, []domain.KeywordCount{
		{Term: "large language reasoning", Count: 1},
		{Term: "language reasoning benchmarks", Count: 1},
		{Term: "large language agents", Count: 1},
		{Term: "language agents reasoning", Count: 1},
		{Term: "agents reasoning benchmarks", Count: 1},
	}, got)
}

func TestNGrams_NeverSpanTitles(t *testing.T) {
	titles := []string{"alpha beta", "gamma delta", "epsilon"}

	bigrams := terms(Bigrams(titles, 50))
	assert.ElementsMatch(t, []string{"alpha beta", "gamma delta"}, bigrams)
	assert.NotContains(t, bigrams, "beta gamma")
	assert.NotContains(t, bigrams, "delta epsilon")

	assert.Empty(t, Trigrams(titles, 50))
}

func TestNGrams_SpanOnlyWithinTitle(t *testing.T) {
	titles := []string{
		"quantum error correction codes",
		"surface codes decoding",
		"neural decoding quantum",
	}

	for _, n := range []int{2, 3} {
		got := countNGrams(titles, n).top(100)
		for _, kc := range got {
			found := false
			for _, title := range titles {
				if strings.Contains(strings.Join(Tokenize(title), " "), kc.Term) {
					found = true
					break
				}
			}
			assert.True(t, found, "%d-gram %q not contained in any single title", n, kc.Term)
			assert.Len(t, strings.Fields(kc.Term), n)
		}
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	got := Extract(nil, 10)

	require.NotNil(t, got.Unigrams)
	require.NotNil(t, got.Bigrams)
	require.NotNil(t, got.Trigrams)
	assert.Empty(t, got.Unigrams)
	assert.Empty(t, got.Bigrams)
	assert.Empty(t, got.Trigrams)
}

func TestExtract_NonPositiveTop(t *testing.T) {
	got := Extract([]string{"alpha beta gamma"}, 0)

	assert.Empty(t, got.Unigrams)
	assert.Empty(t, got.Bigrams)
	assert.Empty(t, got.Trigrams)
}

func TestTitles(t *testing.T) {
	papers := []domain.CanonicalPaper{
		{Title: domain.StringPtr("first")},
		{},
		{Title: domain.StringPtr("")},
		{Title: domain.StringPtr("second")},
	}

	assert.Equal(t, []string{"first", "second"}, Titles(papers))
}

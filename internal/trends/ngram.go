package trends

import (
	"sort"
	"strings"

	"github.com/helixir/research-metadata-api/internal/domain"
)

// counter tallies terms and remembers the order in which each was first seen.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(term string) {
	if _, seen := c.counts[term]; !seen {
		c.order = append(c.order, term)
	}
	c.counts[term]++
}

// top returns the n most frequent terms. Equal counts keep first-seen order.
func (c *counter) top(n int) []domain.KeywordCount {
	if n <= 0 {
		return []domain.KeywordCount{}
	}

	ranked := make([]domain.KeywordCount, len(c.order))
	for i, term := range c.order {
		ranked[i] = domain.KeywordCount{Term: term, Count: c.counts[term]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// countNGrams counts every window of size n within each title.
func countNGrams(titles []string, n int) *counter {
	c := newCounter()
	for _, title := range titles {
		tokens := Tokenize(title)
		for i := 0; i+n <= len(tokens); i++ {
			c.add(strings.Join(tokens[i:i+n], " "))
		}
	}
	return c
}

// Unigrams returns the top single-token terms across titles.
func Unigrams(titles []string, top int) []domain.KeywordCount {
	return countNGrams(titles, 1).top(top)
}

// Bigrams returns the top adjacent token pairs. Pairs never span two titles.
func Bigrams(titles []string, top int) []domain.KeywordCount {
	return countNGrams(titles, 2).top(top)
}

// Trigrams returns the top runs of three tokens. Runs never span two titles.
func Trigrams(titles []string, top int) []domain.KeywordCount {
	return countNGrams(titles, 3).top(top)
}

// Extract computes unigrams, bigrams and trigrams for titles at the same cutoff.
func Extract(titles []string, top int) domain.NGrams {
	return domain.NGrams{
		Unigrams: Unigrams(titles, top),
		Bigrams:  Bigrams(titles, top),
		Trigrams: Trigrams(titles, top),
	}
}

// Titles returns the non-empty titles of papers, in order.
func Titles(papers []domain.CanonicalPaper) []string {
	titles := make([]string, 0, len(papers))
	for _, p := range papers {
		if t := p.TitleText(); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

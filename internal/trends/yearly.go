package trends

import (
	"sort"

	"github.com/helixir/research-metadata-api/internal/domain"
)

// MaxPerYearTop caps the per-year cutoff regardless of the requested global cutoff.
const MaxPerYearTop = 5

// PerYearCutoff returns the cutoff used for per-year buckets: min(MaxPerYearTop, top).
func PerYearCutoff(top int) int {
	if top < MaxPerYearTop {
		return top
	}
	return MaxPerYearTop
}

// GroupTitlesByYear groups paper titles by publication year. Papers without a
// year or a title are skipped; year 0 counts as missing.
func GroupTitlesByYear(papers []domain.CanonicalPaper) map[int][]string {
	byYear := make(map[int][]string)
	for _, p := range papers {
		year, title := p.YearValue(), p.TitleText()
		if year == 0 || title == "" {
			continue
		}
		byYear[year] = append(byYear[year], title)
	}
	return byYear
}

// PerYear computes n-gram statistics for each publication year present in
// papers, ordered by ascending year. Each bucket only sees its own titles.
func PerYear(papers []domain.CanonicalPaper, top int) []domain.YearTrends {
	byYear := GroupTitlesByYear(papers)

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	out := make([]domain.YearTrends, 0, len(years))
	for _, year := range years {
		out = append(out, domain.YearTrends{
			Year:   year,
			NGrams: Extract(byYear[year], top),
		})
	}
	return out
}

// Package dedup removes duplicate papers from merged provider results.
//
// DOI is the only identifier trusted for equality across providers. Two
// papers are duplicates when their DOIs match case-insensitively; the first
// occurrence wins. Papers without a DOI are never treated as duplicates of
// anything, even of an identical DOI-less paper.
package dedup

import "github.com/helixir/research-metadata-api/internal/domain"

// Result contains the deduplicated papers and how many were dropped.
type Result struct {
	Papers  []domain.CanonicalPaper
	Removed int
}

// ByDOI returns papers with DOI duplicates removed, preserving input order.
func ByDOI(papers []domain.CanonicalPaper) []domain.CanonicalPaper {
	return ByDOIWithStats(papers).Papers
}

// ByDOIWithStats is ByDOI that also reports the number of removed papers.
func ByDOIWithStats(papers []domain.CanonicalPaper) Result {
	seen := make(map[string]struct{}, len(papers))
	unique := make([]domain.CanonicalPaper, 0, len(papers))

	for _, p := range papers {
		key, ok := p.DOIKey()
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		unique = append(unique, p)
	}

	return Result{
		Papers:  unique,
		Removed: len(papers) - len(unique),
	}
}

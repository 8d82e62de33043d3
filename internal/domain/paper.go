// Package domain defines the canonical paper model, trend types and the error
// taxonomy shared by the research metadata API.
package domain

import "strings"

// Provider identifies an upstream bibliographic metadata provider.
type Provider string

const (
	// ProviderOpenAlex is the OpenAlex works API.
	ProviderOpenAlex Provider = "openalex"
	// ProviderCrossref is the Crossref REST API.
	ProviderCrossref Provider = "crossref"
)

// DOIResolverPrefix is the resolver base used for dereferenceable DOI URLs.
const DOIResolverPrefix = "https://doi.org/"

// String returns the provider name as it appears in API responses.
func (p Provider) String() string {
	return string(p)
}

// DisplayName returns the human-readable provider name used in error descriptions.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAlex:
		return "OpenAlex"
	case ProviderCrossref:
		return "Crossref"
	default:
		return string(p)
	}
}

// CanonicalPaper is the provider-agnostic paper record produced by the normalizers.
//
// Optional values are pointers so that a missing upstream field is encoded as
// JSON null rather than an empty string or zero. Authors is never nil.
type CanonicalPaper struct {
	Title   *string  `json:"title"`
	Authors []string `json:"authors"`
	Year    *int     `json:"year"`
	DOI     *string  `json:"doi"`
}

// HasDOI reports whether the paper carries a non-empty DOI.
func (p CanonicalPaper) HasDOI() bool {
	return p.DOI != nil && *p.DOI != ""
}

// DOIKey returns the deduplication key for the paper and whether it has one.
// The key is the DOI lowercased; papers without a DOI, or with an empty one,
// have no key.
func (p CanonicalPaper) DOIKey() (string, bool) {
	if !p.HasDOI() {
		return "", false
	}
	return strings.ToLower(*p.DOI), true
}

// TitleText returns the title, or "" when absent.
func (p CanonicalPaper) TitleText() string {
	if p.Title == nil {
		return ""
	}
	return *p.Title
}

// YearValue returns the publication year, or 0 when absent.
func (p CanonicalPaper) YearValue() int {
	if p.Year == nil {
		return 0
	}
	return *p.Year
}

// FilterWithDOI returns the papers that carry a DOI, preserving order.
func FilterWithDOI(papers []CanonicalPaper) []CanonicalPaper {
	out := make([]CanonicalPaper, 0, len(papers))
	for _, p := range papers {
		if p.HasDOI() {
			out = append(out, p)
		}
	}
	return out
}

// CleanDOI strips a resolver URL prefix and surrounding whitespace from a user-supplied DOI.
func CleanDOI(doi string) string {
	return strings.TrimSpace(strings.ReplaceAll(doi, DOIResolverPrefix, ""))
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// YearRange bounds a search by publication year. A zero bound is unset.
type YearRange struct {
	From int
	To   int
}

// HasFrom reports whether a lower bound is set.
func (r YearRange) HasFrom() bool { return r.From != 0 }

// HasTo reports whether an upper bound is set.
func (r YearRange) HasTo() bool { return r.To != 0 }

// Package openalex provides a client for the OpenAlex works API.
//
// OpenAlex is a free, open catalog of scholarly works. This package
// implements the PaperSource interface for keyword search and exact DOI
// lookup, normalizing each work into a domain.CanonicalPaper.
//
// API Documentation: https://docs.openalex.org/
package openalex

// SearchResponse represents the top-level response from the /works endpoint.
// Both keyword search and the doi filter use this shape.
type SearchResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta contains metadata about the result page.
type Meta struct {
	Count   int `json:"count"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Work represents a scholarly work in OpenAlex. Only the fields the
// normalizer reads are decoded; pointers distinguish null from zero.
type Work struct {
	ID              string       `json:"id"`
	DOI             *string      `json:"doi"`
	Title           *string      `json:"title"`
	PublicationYear *int         `json:"publication_year"`
	Authorships     []Authorship `json:"authorships"`
}

// Authorship represents an author's contribution to a work.
type Authorship struct {
	AuthorPosition string      `json:"author_position"`
	Author         *AuthorInfo `json:"author"`
}

// AuthorInfo contains basic author information.
type AuthorInfo struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name"`
}

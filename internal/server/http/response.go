package httpserver

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/helixir/research-metadata-api/internal/aggregator"
	"github.com/helixir/research-metadata-api/internal/domain"
)

// Response types for JSON serialization.

type healthResponse struct {
	Status string `json:"status"`
}

type filtersResponse struct {
	FromYear *int `json:"from_year"`
	ToYear   *int `json:"to_year"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Filters filtersResponse `json:"filters"`
	Count   int             `json:"count"`
	Results []paperResponse `json:"results"`
}

type paperResponse struct {
	Title   *string  `json:"title"`
	Authors []string `json:"authors"`
	Year    *int     `json:"year"`
	DOI     *string  `json:"doi"`
}

type keywordResponse struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type bigramResponse struct {
	Bigram string `json:"bigram"`
	Count  int    `json:"count"`
}

type trigramResponse struct {
	Trigram string `json:"trigram"`
	Count   int    `json:"count"`
}

type ngramsResponse struct {
	Unigrams []keywordResponse `json:"unigrams"`
	Bigrams  []bigramResponse  `json:"bigrams"`
	Trigrams []trigramResponse `json:"trigrams"`
}

type trendsResponse struct {
	Query       string          `json:"query"`
	Filters     filtersResponse `json:"filters"`
	TotalPapers int             `json:"total_papers"`
	Top         int             `json:"top"`
	ngramsResponse
	PerYear perYearResponse `json:"per_year"`
}

type lookupResponse struct {
	Source string        `json:"source"`
	Paper  paperResponse `json:"paper"`
}

// yearEntry is one bucket of the per_year object.
type yearEntry struct {
	Year int
	ngramsResponse
}

// perYearResponse encodes as a JSON object keyed by decimal year, with keys
// in ascending order. Entries must already be sorted.
type perYearResponse []yearEntry

// MarshalJSON implements json.Marshaler.
func (p perYearResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(entry.Year)))
		buf.WriteByte(':')
		body, err := json.Marshal(entry.ngramsResponse)
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Converter functions

func domainPaperToResponse(p domain.CanonicalPaper) paperResponse {
	authors := p.Authors
	if authors == nil {
		authors = []string{}
	}
	return paperResponse{
		Title:   p.Title,
		Authors: authors,
		Year:    p.Year,
		DOI:     p.DOI,
	}
}

func domainPapersToResponse(papers []domain.CanonicalPaper) []paperResponse {
	out := make([]paperResponse, len(papers))
	for i, p := range papers {
		out[i] = domainPaperToResponse(p)
	}
	return out
}

func domainNGramsToResponse(n domain.NGrams) ngramsResponse {
	resp := ngramsResponse{
		Unigrams: make([]keywordResponse, len(n.Unigrams)),
		Bigrams:  make([]bigramResponse, len(n.Bigrams)),
		Trigrams: make([]trigramResponse, len(n.Trigrams)),
	}
	for i, k := range n.Unigrams {
		resp.Unigrams[i] = keywordResponse{Keyword: k.Term, Count: k.Count}
	}
	for i, k := range n.Bigrams {
		resp.Bigrams[i] = bigramResponse{Bigram: k.Term, Count: k.Count}
	}
	for i, k := range n.Trigrams {
		resp.Trigrams[i] = trigramResponse{Trigram: k.Term, Count: k.Count}
	}
	return resp
}

func trendsReportToResponse(params collectionParams, report *aggregator.TrendsReport) trendsResponse {
	perYear := make(perYearResponse, len(report.PerYear))
	for i, y := range report.PerYear {
		perYear[i] = yearEntry{Year: y.Year, ngramsResponse: domainNGramsToResponse(y.NGrams)}
	}
	return trendsResponse{
		Query:          params.Query,
		Filters:        filtersResponse{FromYear: params.FromYear, ToYear: params.ToYear},
		TotalPapers:    report.TotalPapers,
		Top:            report.Top,
		ngramsResponse: domainNGramsToResponse(report.Global),
		PerYear:        perYear,
	}
}

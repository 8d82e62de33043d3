// Package crossref provides a client for the Crossref REST API.
//
// Crossref is the DOI registration agency for most scholarly publishers.
// This package implements the PaperSource interface for keyword search
// over /works and exact lookup through /works/{doi}.
//
// API Documentation: https://api.crossref.org/swagger-ui/index.html
package crossref

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SearchResponse is the envelope returned by the /works search endpoint.
type SearchResponse struct {
	Status      string         `json:"status"`
	MessageType string         `json:"message-type"`
	Message     *SearchMessage `json:"message"`
}

// SearchMessage holds one page of search results.
type SearchMessage struct {
	TotalResults int    `json:"total-results"`
	Items        []Item `json:"items"`
}

// WorkResponse is the envelope returned by /works/{doi}.
type WorkResponse struct {
	Status      string `json:"status"`
	MessageType string `json:"message-type"`
	Message     *Item  `json:"message"`
}

// Item is a Crossref work record. Only the fields the normalizer reads are
// decoded.
type Item struct {
	DOI    string   `json:"DOI"`
	Title  []string `json:"title"`
	Author []Author `json:"author"`
	Issued *Date    `json:"issued"`
}

// isEmpty reports whether the item carries none of the decoded fields, as
// for a "message": {} envelope.
func (i *Item) isEmpty() bool {
	return i.DOI == "" && len(i.Title) == 0 && len(i.Author) == 0 && i.Issued == nil
}

// Author is a contributor name split into given and family parts.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// Date is Crossref's partial date: [[year, month, day]] with trailing parts
// optional and the year itself possibly null.
type Date struct {
	DateParts [][]DatePart `json:"date-parts"`
}

// DatePart is one element of a date-parts group. Null, fractional and
// non-numeric values decode as not Valid instead of failing the response.
type DatePart struct {
	Value int
	Valid bool
}

// UnmarshalJSON accepts an integer or a string holding one.
func (p *DatePart) UnmarshalJSON(data []byte) error {
	*p = DatePart{}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= math.MaxInt32 {
			*p = DatePart{Value: int(v), Valid: true}
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*p = DatePart{Value: n, Valid: true}
		}
	}
	return nil
}

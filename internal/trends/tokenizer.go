// Package trends derives keyword statistics from paper titles.
//
// Titles are lowercased and split into runs of ASCII letters. Tokens shorter
// than MinTokenLength and stop words are dropped. The surviving tokens are
// counted as unigrams, and as bigrams and trigrams formed within a single
// title. Counts are ranked by frequency with ties kept in first-seen order,
// so the same input always produces the same output.
package trends

import "strings"

// MinTokenLength is the shortest token kept by the tokenizer.
const MinTokenLength = 3

// stopWords holds English function words and generic academic filler words.
// It is never modified after initialization.
var stopWords = map[string]struct{}{
	"the": {}, "of": {}, "and": {}, "in": {}, "for": {}, "on": {}, "with": {}, "to": {},
	"a": {}, "an": {}, "by": {}, "from": {}, "at": {}, "as": {},
	"is": {}, "are": {}, "be": {}, "this": {}, "that": {}, "using": {}, "use": {},
	"based": {}, "via": {}, "into": {}, "between": {},
	"study": {}, "analysis": {}, "approach": {}, "method": {}, "methods": {},
	"review": {}, "system": {}, "model": {}, "models": {}, "data": {},
	"application": {}, "applications": {},
}

// IsStopWord reports whether w is in the stop-word set. w must be lowercase.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// StopWords returns a copy of the stop-word set as a slice, in no particular order.
func StopWords() []string {
	words := make([]string, 0, len(stopWords))
	for w := range stopWords {
		words = append(words, w)
	}
	return words
}

// Tokenize returns the clean tokens of a title, in order.
func Tokenize(title string) []string {
	if title == "" {
		return nil
	}

	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return r < 'a' || r > 'z'
	})

	tokens := words[:0]
	for _, w := range words {
		if len(w) < MinTokenLength || IsStopWord(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

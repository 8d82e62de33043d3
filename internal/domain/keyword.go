package domain

// KeywordCount is a term with its frequency across a set of titles.
// Sequences of KeywordCount are ordered by descending count, ties by first appearance.
type KeywordCount struct {
	Term  string
	Count int
}

// NGrams holds the ranked unigram, bigram and trigram counts for one set of titles.
type NGrams struct {
	Unigrams []KeywordCount
	Bigrams  []KeywordCount
	Trigrams []KeywordCount
}

// YearTrends holds the n-gram statistics for the titles published in one year.
type YearTrends struct {
	Year int
	NGrams
}

package search

import (
	"strings"
	"unicode"
)

// stopwords lists terms too common to carry signal. They are dropped at
// index time and at query time; the two sides must stay symmetric or a
// stopword in a query would AND the result set down to nothing.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "in": {}, "is": {},
	"it": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "was": {}, "were": {}, "with": {},
}

// tokenize folds text to lowercase search terms: letters and digits survive,
// everything else splits words. Stopwords and single-rune fragments drop out.
func tokenize(text string) []string {
	words := strings.Fields(foldText(text))
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// uniqueTerms returns the distinct terms of a query, in first-seen order.
func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

func foldText(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
}

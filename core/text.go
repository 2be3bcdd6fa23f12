package core

import (
	"strings"
	"unicode"
)

// Stop words excluded from token-overlap comparisons
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// Tokenize splits text into comparison tokens. Latin-script words are
// lowercased and stripped of punctuation; Han characters are emitted as
// single-character tokens since the corpus mixes Chinese and English and
// no dictionary segmenter is carried. Stop words are removed.
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/4)
	var word strings.Builder

	flush := func() {
		if word.Len() == 0 {
			return
		}
		token := strings.ToLower(word.String())
		word.Reset()
		if !stopWords[token] {
			tokens = append(tokens, token)
		}
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// TokenSet returns the set of unique tokens in text.
func TokenSet(text string) map[string]bool {
	tokens := Tokenize(text)
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

// TextSimilarity computes the Jaccard similarity of the token sets of two
// texts. Returns 0 when either text has no tokens.
func TextSimilarity(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// KeywordOverlap returns the fraction of query keywords that also appear
// in the item's keyword list. Returns 0 when the query has no keywords.
// Comparison is case-insensitive.
func KeywordOverlap(queryKeywords, itemKeywords []string) float64 {
	if len(queryKeywords) == 0 {
		return 0
	}

	itemSet := make(map[string]bool, len(itemKeywords))
	for _, kw := range itemKeywords {
		itemSet[strings.ToLower(kw)] = true
	}

	matched := 0
	for _, kw := range queryKeywords {
		if itemSet[strings.ToLower(kw)] {
			matched++
		}
	}

	return float64(matched) / float64(len(queryKeywords))
}

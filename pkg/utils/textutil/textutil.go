// Package textutil provides the small lexical primitives shared by the
// retrieval and detection layers: tokenization, sentence splitting, and
// overlap scoring.
package textutil

import (
	"strings"
	"unicode"
)

// Tokenize lowercases and splits text on non-alphanumeric runes
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// TokenSet returns the distinct tokens of text
func TokenSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, tok := range Tokenize(text) {
		set[tok] = true
	}
	return set
}

// Jaccard returns |A∩B| / |A∪B| over the token sets of both texts
func Jaccard(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// OverlapRatio returns the shared-token count divided by the smaller set
// size. More forgiving than Jaccard for sentences of different lengths.
func OverlapRatio(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)
	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	if smaller == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	return float64(intersection) / float64(smaller)
}

// SplitSentences breaks text on sentence-ending punctuation, keeping the
// terminator attached. Abbreviation handling is deliberately naive; the
// callers compare sentences against each other, so consistent splitting
// matters more than linguistic precision.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}

		// Keep trailing closers such as ." or !) with the sentence.
		for i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\'' || runes[i+1] == ')') {
			i++
			current.WriteRune(runes[i])
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// NGrams returns all n-grams over the token sequence of text
func NGrams(text string, n int) []string {
	tokens := Tokenize(text)
	if len(tokens) < n {
		return nil
	}

	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}

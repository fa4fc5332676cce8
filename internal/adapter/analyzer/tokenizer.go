package analyzer

import (
	"sort"
	"strings"
	"unicode"
)

// TokenSet is a set of normalized word tokens.
type TokenSet map[string]struct{}

// Has reports whether token is in the set.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Sorted returns the tokens in lexical order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Tokenize lowercases text and returns the set of maximal runs of
// letters, digits and underscores. Everything else separates tokens.
func Tokenize(text string) TokenSet {
	words := splitWords(strings.ToLower(text))
	tokens := make(TokenSet, len(words))
	for _, word := range words {
		tokens[word] = struct{}{}
	}
	return tokens
}

// Words splits text on whitespace, the unit chunk windows are measured in.
func Words(text string) []string {
	return strings.Fields(text)
}

// splitWords splits text into words using unicode word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if isWordRune(r) {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

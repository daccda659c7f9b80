package lookup

import (
	"strings"
	"unicode"
)

// Kind tells the caller what to do with a query
type Kind int

const (
	// KindLookup sends the term to the dictionary
	KindLookup Kind = iota
	// KindTranslate hands the raw term to the translation tool
	KindTranslate
)

func (k Kind) String() string {
	switch k {
	case KindLookup:
		return "lookup"
	case KindTranslate:
		return "translate"
	default:
		return "unknown"
	}
}

// NormalizedQuery is a classified, trimmed user query
type NormalizedQuery struct {
	Kind Kind
	Term string
}

// Normalize classifies input. Anything containing a rune outside ASCII
// letters, whitespace and common English punctuation is a translation
// request.
func Normalize(input string) NormalizedQuery {
	term := strings.TrimSpace(input)

	kind := KindLookup
	if strings.IndexFunc(input, func(r rune) bool { return !isEnglishRune(r) }) >= 0 {
		kind = KindTranslate
	}

	return NormalizedQuery{Kind: kind, Term: term}
}

func isEnglishRune(r rune) bool {
	if isASCIILetter(r) {
		return true
	}

	if unicode.IsSpace(r) || r == '\ufeff' {
		return true
	}

	switch r {
	case '.', ',', '!', '?', '\'', ';', ':', '"', '(', ')', '-', '’':
		return true
	}

	return false
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// StripToLetters removes every rune that is not an ASCII letter, e.g.
// trailing punctuation on a word picked out of an example sentence.
func StripToLetters(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	for _, r := range input {
		if isASCIILetter(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

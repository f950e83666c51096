package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is the shortest token kept; anything at or below it is dropped.
const minTokenLen = 2

// Tokenize lowercases text, splits it on anything that is not a letter or
// digit, drops short tokens and stop words, and stems what is left.
// Order and duplicates are preserved. An empty code means detect.
func (r *Registry) Tokenize(text, code string) []string {
	if code == "" {
		code = r.Detect(text)
	}

	cleaned := strings.Map(func(c rune) rune {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			return c
		}
		return ' '
	}, lower(text))

	var tokens []string
	for _, w := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(w) <= minTokenLen {
			continue
		}
		if r.IsStopWord(code, w) {
			continue
		}
		tokens = append(tokens, r.Stem(w, code))
	}
	return tokens
}

// Stem strips the first configured ending that matches, provided the word is
// more than three runes longer than the ending. Endings are tried in the
// order they were configured, not longest first.
func (r *Registry) Stem(word, code string) string {
	l, ok := r.langs[code]
	if !ok {
		return word
	}
	n := utf8.RuneCountInString(word)
	for _, end := range l.Endings {
		if end == "" {
			continue
		}
		if n > utf8.RuneCountInString(end)+3 && strings.HasSuffix(word, end) {
			return strings.TrimSuffix(word, end)
		}
	}
	return word
}

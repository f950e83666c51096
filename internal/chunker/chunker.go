// Package chunker splits long text into passages small enough to be stored
// as separate semantic records.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultTargetBytes = 400
	DefaultMaxBytes    = 600
)

// Options bounds passage sizes in bytes.
type Options struct {
	TargetBytes int
	MaxBytes    int
}

// DefaultOptions returns target 400, max 600.
func DefaultOptions() Options {
	return Options{TargetBytes: DefaultTargetBytes, MaxBytes: DefaultMaxBytes}
}

// Passage is one piece of the input, in order.
type Passage struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Split breaks text on headings and blank lines, merges neighbours up to
// TargetBytes and cuts anything still over MaxBytes at sentence, then word,
// then rune boundaries. Text within MaxBytes comes back whole.
func Split(text string, opts Options) []Passage {
	if opts.TargetBytes <= 0 || opts.MaxBytes <= 0 {
		opts = DefaultOptions()
	}
	if opts.TargetBytes > opts.MaxBytes {
		opts.TargetBytes = opts.MaxBytes
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= opts.MaxBytes {
		return []Passage{{Index: 0, Text: text}}
	}

	var pieces []string
	for _, b := range blocks(text) {
		if len(b) <= opts.MaxBytes {
			pieces = append(pieces, b)
			continue
		}
		pieces = append(pieces, cut(b, opts.MaxBytes)...)
	}

	var out []Passage
	var acc string
	emit := func() {
		if acc != "" {
			out = append(out, Passage{Index: len(out), Text: acc})
			acc = ""
		}
	}
	for _, p := range pieces {
		switch {
		case acc == "":
			acc = p
		case len(acc)+2+len(p) <= opts.TargetBytes:
			acc += "\n\n" + p
		default:
			emit()
			acc = p
		}
	}
	emit()
	return out
}

// blocks splits on blank lines and before markdown headings.
func blocks(text string) []string {
	var out []string
	var cur []string
	flush := func() {
		if t := strings.TrimSpace(strings.Join(cur, "\n")); t != "" {
			out = append(out, t)
		}
		cur = nil
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			flush()
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

// cut splits s into pieces of at most max bytes.
func cut(s string, max int) []string {
	var out []string
	for len(s) > max {
		i := boundary(s, max)
		out = append(out, strings.TrimSpace(s[:i]))
		s = strings.TrimSpace(s[i:])
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

// boundary returns where to cut s within max bytes: after the last sentence
// end in the second half, else at the last space, else at a rune start.
func boundary(s string, max int) int {
	head := s[:max]
	if i := strings.LastIndexAny(head, ".!?\n"); i >= max/2 {
		return i + 1
	}
	if i := strings.LastIndexByte(head, ' '); i > 0 {
		return i
	}
	i := max
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	if i == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return i
}

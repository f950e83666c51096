package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cyrillicFallbackRatio selects "ru" when no registered rule matched.
const cyrillicFallbackRatio = 0.3

// lower is Unicode-aware lowercasing. A Caser is stateful, so one is made per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// CyrillicRatio returns the share of Cyrillic runes among all runes of text.
// Empty text has ratio 0.
func CyrillicRatio(text string) float64 {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return 0
	}
	cyr := 0
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) {
			cyr++
		}
	}
	return float64(cyr) / float64(total)
}

// Detect returns the language code for text.
//
// Charset rules are checked first, then sample words (two or more found as
// substrings), both in registration order. Without a match the Cyrillic ratio
// decides between "ru" and DefaultLanguage.
func (r *Registry) Detect(text string) string {
	text = lower(text)
	ratio := CyrillicRatio(text)

	if ratio > 0 {
		for _, code := range r.order {
			d := r.langs[code].Detection
			if d == nil || d.Charset != CharsetCyrillic {
				continue
			}
			if ratio >= d.Threshold {
				return code
			}
		}
	}

	if text != "" {
		for _, code := range r.order {
			d := r.langs[code].Detection
			if d == nil || len(d.SampleWords) == 0 {
				continue
			}
			hits := 0
			for _, w := range d.SampleWords {
				if w != "" && strings.Contains(text, w) {
					hits++
				}
			}
			if hits >= 2 {
				return code
			}
		}
	}

	if ratio > cyrillicFallbackRatio {
		return "ru"
	}
	return DefaultLanguage
}

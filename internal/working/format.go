package working

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rcliao/agent-recall/internal/model"
)

// truncateNewSlack is reserved for the "\n{n}. " prefix of an appended line.
const truncateNewSlack = 10

var whitespaceRun = regexp.MustCompile(`\s+`)

func line(position int, content string) string {
	return strconv.Itoa(position) + ". " + content
}

// Format renders items as 1-indexed "{n}. {content}" lines joined by newline.
func Format(items []model.WorkingItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = line(i+1, it.Content)
	}
	return strings.Join(lines, "\n")
}

func formattedLength(items []model.WorkingItem) int {
	return len(Format(items))
}

// lengthWith is the formatted length after appending content.
func lengthWith(items []model.WorkingItem, content string) int {
	n := formattedLength(items)
	if len(items) > 0 {
		n++
	}
	return n + len(line(len(items)+1, content))
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// forContext takes whole lines in order while the joined text fits maxLength.
func forContext(items []model.WorkingItem, maxLength int) string {
	var b strings.Builder
	for i, it := range items {
		l := line(i+1, it.Content)
		need := len(l)
		if b.Len() > 0 {
			need++
		}
		if b.Len()+need > maxLength {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
	}
	return b.String()
}

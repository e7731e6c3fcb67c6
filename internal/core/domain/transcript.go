package domain

import (
	"strings"
	"unicode"
)

// JoinSnippets joins non-empty snippets with a single space, in order.
func JoinSnippets(snippets []string) string {
	var b strings.Builder
	for _, s := range snippets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	return b.String()
}

// CleanTranscript lower-cases text, keeps ASCII letters, digits and whitespace,
// and collapses consecutive repeated words ("the the the" -> "the").
func CleanTranscript(text string) string {
	text = strings.ToLower(text)
	kept := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)) {
			return r
		}
		return -1
	}, text)

	words := strings.Fields(kept)
	if len(words) == 0 {
		return ""
	}
	out := words[:1]
	for _, w := range words[1:] {
		if w != out[len(out)-1] {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

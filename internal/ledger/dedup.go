package ledger

import (
	"strings"
	"unicode/utf8"
)

// Prefix lengths for the duplicate test.
const (
	GoalPrefixLen  = 20
	QuestPrefixLen = 15
)

// FindDuplicate returns the first existing title that candidate duplicates.
//
// Two titles are duplicates when, case-insensitively, the first prefixLen runes
// of either one occur anywhere in the other. Empty existing titles never match.
func FindDuplicate(candidate string, existing []string, prefixLen int) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return "", false
	}
	cp := prefix(c, prefixLen)
	for _, title := range existing {
		e := strings.ToLower(strings.TrimSpace(title))
		if e == "" {
			continue
		}
		if strings.Contains(e, cp) || strings.Contains(c, prefix(e, prefixLen)) {
			return title, true
		}
	}
	return "", false
}

func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

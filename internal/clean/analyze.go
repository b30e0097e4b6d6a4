// Package clean derives naming signals from an enumerated item set and
// assigns default batch actions per item.
package clean

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/drivesweep/drivesweep/internal/tree"
)

// DefaultPromoKeywords flags the spam naming patterns that show up in
// shared "course" folders: repeated files named after channels to join.
var DefaultPromoKeywords = []string{
	"subscribe", "join", "channel", "promo", "telegram", "read", "watch",
}

// Analysis holds the analyzer's suggestions. They seed the classifier's
// defaults and are freely overridable by the caller.
type Analysis struct {
	// SuggestedTag is the longest common prefix of all item names, or ""
	// when it is too short or non-alphanumeric to be a meaningful
	// removable tag.
	SuggestedTag string

	// ExcludeNames are names that occur more than once and contain a
	// promotional keyword.
	ExcludeNames map[string]struct{}
}

// Excluded reports whether name was flagged promotional.
func (a Analysis) Excluded(name string) bool {
	_, ok := a.ExcludeNames[name]
	return ok
}

// Analyze computes naming signals over items. A nil or empty keywords slice
// selects DefaultPromoKeywords.
func Analyze(items []*tree.Item, keywords []string) Analysis {
	if len(keywords) == 0 {
		keywords = DefaultPromoKeywords
	}

	a := Analysis{ExcludeNames: make(map[string]struct{})}

	counts := make(map[string]int, len(items))
	for _, it := range items {
		counts[it.Name]++
	}
	for name, count := range counts {
		if count < 2 {
			continue
		}
		lower := strings.ToLower(name)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				a.ExcludeNames[name] = struct{}{}
				break
			}
		}
	}

	a.SuggestedTag = commonPrefix(items)
	return a
}

// commonPrefix returns the longest common prefix of all item names,
// discarded as noise when shorter than 3 characters or containing no
// alphanumeric character. The prefix is trimmed rune-wise so it never
// ends inside a multi-byte character.
func commonPrefix(items []*tree.Item) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0].Name
	for _, it := range items[1:] {
		for !strings.HasPrefix(it.Name, prefix) {
			_, size := utf8.DecodeLastRuneInString(prefix)
			prefix = prefix[:len(prefix)-size]
			if prefix == "" {
				return ""
			}
		}
	}
	if utf8.RuneCountInString(prefix) < 3 || !containsAlnum(prefix) {
		return ""
	}
	return prefix
}

func containsAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

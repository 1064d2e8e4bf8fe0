package responder

import "strings"

// DenyList is a static keyword filter applied to inbound text before any
// response is generated. Matching is a case-insensitive substring check.
type DenyList struct {
	words []string
}

// NewDenyList builds a DenyList from configured keywords. Blank entries are
// dropped; an empty list matches nothing.
func NewDenyList(words []string) *DenyList {
	list := &DenyList{}
	for _, raw := range words {
		word := strings.ToLower(strings.TrimSpace(raw))
		if word == "" {
			continue
		}
		list.words = append(list.words, word)
	}
	return list
}

// Matches reports whether text contains any deny-listed keyword.
func (d *DenyList) Matches(text string) bool {
	if d == nil || len(d.words) == 0 {
		return false
	}
	lowered := strings.ToLower(text)
	for _, word := range d.words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// Package keyword implements the configured-keyword matching engine.
package keyword

import "strings"

// Matcher reports which configured keywords appear in a text blob.
// With no keywords configured the matcher is disabled and every record is
// kept regardless of matches (see Enabled).
type Matcher struct {
	keywords []string // configuration order, original casing
	lowered  []string
}

// New builds a Matcher from the configured keyword list. Blank and duplicate
// entries are dropped; the remaining configuration order is preserved.
func New(keywords []string) *Matcher {
	m := &Matcher{}
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		low := strings.ToLower(kw)
		if _, ok := seen[low]; ok {
			continue
		}
		seen[low] = struct{}{}
		m.keywords = append(m.keywords, kw)
		m.lowered = append(m.lowered, low)
	}
	return m
}

// Enabled reports whether any keyword is configured.
func (m *Matcher) Enabled() bool {
	return len(m.keywords) > 0
}

// Match returns the configured keywords found in text, case-insensitively,
// in configuration order. It returns nil when nothing matches.
func (m *Matcher) Match(text string) []string {
	if len(m.keywords) == 0 || text == "" {
		return nil
	}
	low := strings.ToLower(text)
	var found []string
	for i, kw := range m.lowered {
		if strings.Contains(low, kw) {
			found = append(found, m.keywords[i])
		}
	}
	return found
}

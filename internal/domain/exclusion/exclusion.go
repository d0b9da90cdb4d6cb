// Package exclusion decides which series are left out of statistics and
// presentation. Aggregation and rendering share one Filter so the two
// passes cannot drift apart.
package exclusion

import "strings"

// DefaultTerms are matched case-insensitively as substrings of the series
// name. "National Ranking" also covers "National Rankings".
var DefaultTerms = []string{"National Ranking", "Seeding List"} //nolint:gochecknoglobals // shared default

// Filter matches series names against a list of exclusion terms.
type Filter struct {
	terms []string
	lower []string
}

// New builds a Filter. Blank terms are ignored; with no usable term the
// DefaultTerms apply.
func New(terms ...string) Filter {
	f := Filter{}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		f.terms = append(f.terms, t)
		f.lower = append(f.lower, strings.ToLower(t))
	}
	if len(f.terms) == 0 {
		return New(DefaultTerms...)
	}
	return f
}

// Excludes reports whether the series must be left out.
func (f Filter) Excludes(seriesName string) bool {
	if len(f.lower) == 0 {
		// zero Filter behaves like the default one
		return New().Excludes(seriesName)
	}
	name := strings.ToLower(seriesName)
	for _, t := range f.lower {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// Terms returns a copy of the configured terms.
func (f Filter) Terms() []string {
	if len(f.terms) == 0 {
		return append([]string(nil), DefaultTerms...)
	}
	return append([]string(nil), f.terms...)
}

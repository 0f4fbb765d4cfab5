// Package search parses navigator filter text and matches it against schema tree names.
package search

import "strings"

// Kind names the tree level a query can be restricted to
type Kind string

const (
	KindAny    Kind = ""
	KindSchema Kind = "schema"
	KindTable  Kind = "table"
	KindColumn Kind = "column"
)

// Query represents a parsed search query
type Query struct {
	Pattern string // The search pattern (after removing prefix/type)
	Negate  bool   // True if query starts with !
	Kind    Kind   // Restricts matches to one tree level
}

// Type prefix mappings
var kindPrefixes = []struct {
	prefix string
	kind   Kind
}{
	// Long prefixes first so "schema:" is not read as "s:"
	{"schema:", KindSchema},
	{"table:", KindTable},
	{"column:", KindColumn},
	{"col:", KindColumn},
	{"s:", KindSchema},
	{"t:", KindTable},
	{"c:", KindColumn},
}

// Parse parses a search query string into structured form
// Examples:
//   - "plan" → {Pattern: "plan"}
//   - "!test" → {Pattern: "test", Negate: true}
//   - "t:plan" → {Pattern: "plan", Kind: "table"}
//   - "!c:id" → {Pattern: "id", Negate: true, Kind: "column"}
func Parse(text string) Query {
	q := Query{}

	if strings.HasPrefix(text, "!") {
		q.Negate = true
		text = text[1:]
	}

	lower := strings.ToLower(text)
	for _, p := range kindPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			q.Kind = p.kind
			text = text[len(p.prefix):]
			break
		}
	}

	q.Pattern = text
	return q
}

// IsEmpty reports whether the query filters nothing
func (q Query) IsEmpty() bool {
	return q.Pattern == "" && q.Kind == KindAny && !q.Negate
}

// Match reports whether a name at the given tree level satisfies the query.
// A negated query keeps names of other levels and names of its level that do not match.
func (q Query) Match(kind Kind, name string) bool {
	kindMatches := q.Kind == KindAny || q.Kind == kind
	patternMatches, _ := FuzzyMatch(q.Pattern, name)

	if q.Negate {
		if !kindMatches {
			return true
		}
		return !patternMatches
	}
	return kindMatches && patternMatches
}

// FuzzyMatch performs fuzzy subsequence matching
// Returns whether the pattern matches and the positions of matched characters
// Matching is case-insensitive
func FuzzyMatch(pattern, target string) (bool, []int) {
	if pattern == "" {
		return true, []int{}
	}

	patternLower := strings.ToLower(pattern)
	targetLower := strings.ToLower(target)

	positions := make([]int, 0, len(pattern))
	patternIdx := 0

	for i := 0; i < len(targetLower) && patternIdx < len(patternLower); i++ {
		if targetLower[i] == patternLower[patternIdx] {
			positions = append(positions, i)
			patternIdx++
		}
	}

	if patternIdx == len(patternLower) {
		return true, positions
	}
	return false, nil
}

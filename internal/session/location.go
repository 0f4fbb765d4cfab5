package session

import (
	"fmt"
	"net/url"
	"slices"
)

const (
	HistoryParam = "history"
	CommitParam  = "commit"
)

// Location is the address whose query parameters carry the shareable view state
type Location interface {
	Query() url.Values
	Push(query url.Values)
}

// UpdateSearchParams applies one mutation to a copy of the current parameters
// and pushes the result. Whenever history is not open the commit parameter is
// removed too, so the two are never out of sync. Nothing is pushed when the
// parameters did not change.
func UpdateSearchParams(loc Location, mutate func(next url.Values)) {
	current := loc.Query()
	next := cloneValues(current)
	mutate(next)

	if next.Get(HistoryParam) != "1" {
		next.Del(CommitParam)
	}

	if next.Encode() == current.Encode() {
		return
	}
	loc.Push(next)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = slices.Clone(vals)
	}
	return out
}

// MemoryLocation is an in-process address bar with back and forward navigation
type MemoryLocation struct {
	path    string
	entries []url.Values
	idx     int
}

// NewMemoryLocation creates a location at path with no parameters
func NewMemoryLocation(path string) *MemoryLocation {
	return &MemoryLocation{path: path, entries: []url.Values{{}}}
}

// ParseLocation creates a location from a path with an optional query string,
// such as "/projects/3?history=1&commit=42" or "?history=1"
func ParseLocation(raw string) (*MemoryLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse location %q: %w", raw, err)
	}
	loc := NewMemoryLocation(u.Path)
	loc.entries[0] = u.Query()
	return loc, nil
}

// Query returns a copy of the current parameters
func (l *MemoryLocation) Query() url.Values {
	return cloneValues(l.entries[l.idx])
}

// Push records query as a new entry, discarding any forward entries
func (l *MemoryLocation) Push(query url.Values) {
	l.entries = append(l.entries[:l.idx+1], cloneValues(query))
	l.idx++
}

// Back moves to the previous entry
func (l *MemoryLocation) Back() bool {
	if l.idx == 0 {
		return false
	}
	l.idx--
	return true
}

// Forward moves to the next entry
func (l *MemoryLocation) Forward() bool {
	if l.idx >= len(l.entries)-1 {
		return false
	}
	l.idx++
	return true
}

// Path returns the path part of the location
func (l *MemoryLocation) Path() string {
	return l.path
}

// String renders the location as path plus query string
func (l *MemoryLocation) String() string {
	qs := l.entries[l.idx].Encode()
	if qs == "" {
		return l.path
	}
	return l.path + "?" + qs
}

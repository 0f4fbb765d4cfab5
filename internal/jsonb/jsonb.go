// Package jsonb recognises JSON documents in result cells and lays them out
// for reading.
package jsonb

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// IsDocument reports whether s is a JSON object or array
func IsDocument(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return false
	}
	return gjson.Valid(s)
}

// Pretty indents a JSON document. Anything else is returned unchanged.
func Pretty(s string) string {
	if !IsDocument(s) {
		return s
	}
	return strings.TrimRight(gjson.Get(s, "@pretty").Raw, "\n")
}

// Path addresses one value inside a document. Array indexes are decimal parts.
type Path []string

// String renders the path in JSONPath notation, e.g. $.user.tags[0]
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, part := range p {
		if isIndex(part) {
			b.WriteString("[" + part + "]")
		} else {
			b.WriteString("." + part)
		}
	}
	return b.String()
}

// Operator renders the path for the postgres #> operator, e.g. {user,tags,0}
func (p Path) Operator() string {
	return "{" + strings.Join(p, ",") + "}"
}

// query renders the path in gjson syntax
func (p Path) query() string {
	if len(p) == 0 {
		return "@this"
	}
	escaped := make([]string, len(p))
	for i, part := range p {
		escaped[i] = escaper.Replace(part)
	}
	return strings.Join(escaped, ".")
}

var escaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// Leaf is a scalar (or empty container) found in a document
type Leaf struct {
	Path  Path
	Value string
}

// Leaves lists every scalar of a document in document order.
// It returns nil when s is not a document.
func Leaves(s string) []Leaf {
	if !IsDocument(s) {
		return nil
	}
	var out []Leaf
	walk(gjson.Parse(s), nil, &out)
	return out
}

func walk(r gjson.Result, prefix Path, out *[]Leaf) {
	if r.IsObject() || r.IsArray() {
		i := 0
		r.ForEach(func(key, value gjson.Result) bool {
			part := key.String()
			if r.IsArray() {
				part = strconv.Itoa(i)
			}
			i++
			next := append(prefix[:len(prefix):len(prefix)], part)
			walk(value, next, out)
			return true
		})
		if i > 0 {
			return
		}
	}
	*out = append(*out, Leaf{Path: prefix, Value: r.Raw})
}

// Get returns the raw JSON at path, or "" when it does not exist
func Get(s string, path Path) string {
	return gjson.Get(s, path.query()).Raw
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	_, err := strconv.Atoi(part)
	return err == nil
}

// Package fields addresses translatable fields embedded in larger text blobs
// by regular expression, and patches them back without touching anything
// outside the captured spans.
package fields

import (
	"fmt"
	"regexp"
	"sort"
)

// quoted captures the body of a double-quoted string with backslash escapes.
const quoted = `"((?:[^"\\]|\\.)*)"`

// Pattern locates one named field. The expression must have exactly one
// capturing group: the payload.
type Pattern struct {
	Name string
	re   *regexp.Regexp
}

// NewPattern compiles expr for the named field.
func NewPattern(name, expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile field %s: %w", name, err)
	}
	if re.NumSubexp() != 1 {
		return Pattern{}, fmt.Errorf("field %s: want 1 capturing group, got %d", name, re.NumSubexp())
	}
	return Pattern{Name: name, re: re}, nil
}

// MustPattern is NewPattern that panics, for package-level patterns.
func MustPattern(name, expr string) Pattern {
	p, err := NewPattern(name, expr)
	if err != nil {
		panic(err)
	}
	return p
}

// StringField returns a pattern for a JSON-style `"name": "payload"` member.
// The payload is captured in its raw, escaped form.
func StringField(name string) Pattern {
	return MustPattern(name, `(?s)"`+regexp.QuoteMeta(name)+`"\s*:\s*`+quoted)
}

// IntField returns a pattern for a JSON-style `"name": 123` member.
func IntField(name string) Pattern {
	return MustPattern(name, `"`+regexp.QuoteMeta(name)+`"\s*:\s*(-?\d+)`)
}

// Field is one located payload.
type Field struct {
	Name string
	// Start and End delimit the payload in the scanned content, excluding quotes.
	Start, End int
	Text       string
}

// Find returns the first occurrence of p in content.
func (p Pattern) Find(content string) (Field, bool) {
	loc := p.re.FindStringSubmatchIndex(content)
	if loc == nil || loc[2] < 0 {
		return Field{}, false
	}
	return Field{Name: p.Name, Start: loc[2], End: loc[3], Text: content[loc[2]:loc[3]]}, true
}

// FindAll returns every occurrence of p in document order. The Nth element
// addresses the Nth occurrence.
func (p Pattern) FindAll(content string) []Field {
	locs := p.re.FindAllStringSubmatchIndex(content, -1)
	out := make([]Field, 0, len(locs))
	for _, loc := range locs {
		if loc[2] < 0 {
			continue
		}
		out = append(out, Field{Name: p.Name, Start: loc[2], End: loc[3], Text: content[loc[2]:loc[3]]})
	}
	return out
}

// Edit replaces content[Start:End] with Text.
type Edit struct {
	Start, End int
	Text       string
}

// Apply performs every edit against the snapshot content and returns a fresh
// string. Spans are all relative to content; edits are applied from the last
// start offset to the first so no replacement shifts a pending span.
// Overlapping or out-of-range edits are rejected.
func Apply(content string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return content, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	// parts is built back to front.
	parts := make([]string, 0, 2*len(sorted)+1)
	tail := len(content)
	for _, e := range sorted {
		if e.Start < 0 || e.Start > e.End || e.End > len(content) {
			return "", fmt.Errorf("edit [%d:%d] out of range", e.Start, e.End)
		}
		if e.End > tail {
			return "", fmt.Errorf("edit [%d:%d] overlaps a later edit", e.Start, e.End)
		}
		parts = append(parts, content[e.End:tail], e.Text)
		tail = e.Start
	}
	parts = append(parts, content[:tail])

	size := 0
	for _, p := range parts {
		size += len(p)
	}
	buf := make([]byte, 0, size)
	for i := len(parts) - 1; i >= 0; i-- {
		buf = append(buf, parts[i]...)
	}
	return string(buf), nil
}

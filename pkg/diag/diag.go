// Package diag collects and formats diagnostics across a whole compilation
// run, so a compile that touches many templates reports every failure it
// finds rather than stopping at the first one (§4.6, §7).
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a diagnostic's severity.
type Kind int

const (
	Error Kind = iota
	Warning
)

func (k Kind) String() string {
	switch k {
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Diagnostic is one reportable problem located within a template file.
type Diagnostic struct {
	Path    string
	Line    int
	Col     int
	Kind    Kind
	Message string
}

// Formatted renders the diagnostic as "path:line:col: kind: message", the
// format every diagnostic in a run shares regardless of which stage
// (lexer, parser, emitter) produced it.
func (d Diagnostic) Formatted() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Path, d.Line, d.Col, d.Kind, d.Message)
}

// Bag accumulates diagnostics across an entire compile, so the CLI can
// keep processing every discovered template instead of aborting on the
// first one that fails.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Errorf appends an Error-kind diagnostic built from a format string.
func (b *Bag) Errorf(path string, line, col int, format string, args ...any) {
	b.Add(Diagnostic{Path: path, Line: line, Col: col, Kind: Error, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a Warning-kind diagnostic built from a format string.
func (b *Bag) Warnf(path string, line, col int, format string, args ...any) {
	b.Add(Diagnostic{Path: path, Line: line, Col: col, Kind: Warning, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-kind diagnostic has been recorded.
// Warnings alone never fail a compile.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Kind == Error {
			return true
		}
	}
	return false
}

// Len reports the number of diagnostics recorded, errors and warnings
// together.
func (b *Bag) Len() int {
	return len(b.items)
}

// All returns every diagnostic, sorted by path then position, so output is
// deterministic regardless of which goroutine or discovery order produced
// each one.
func (b *Bag) All() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.Slice(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if a.Path != c.Path {
			return a.Path < c.Path
		}
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		return a.Col < c.Col
	})
	return out
}

// String renders every diagnostic, one per line, in sorted order.
func (b *Bag) String() string {
	var sb strings.Builder
	for _, d := range b.All() {
		sb.WriteString(d.Formatted())
		sb.WriteByte('\n')
	}
	return sb.String()
}

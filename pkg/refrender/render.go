package refrender

import (
	"fmt"
	"strings"

	"github.com/stache-compiler/stache/pkg/mustache"
)

// context is the render-time lookup stack: a dotted key's head segment is
// searched top-down across frames, but every segment after the head is
// resolved strictly inside the frame where the head was found (§ Data
// Model: "dotted key lookup does not search outer frames for inner
// segments").
type context struct {
	frames []Value
	strict bool
}

func newContext(top Value, strict bool) *context {
	return &context{frames: []Value{top}, strict: strict}
}

func (c *context) push(v Value) { c.frames = append(c.frames, v) }
func (c *context) pop()         { c.frames = c.frames[:len(c.frames)-1] }

func (c *context) resolve(key mustache.Key) (Value, bool, error) {
	if key.Dot {
		return c.frames[len(c.frames)-1], true, nil
	}
	if len(key.Segments) == 0 {
		return NilValue{}, false, nil
	}
	head := key.Segments[0]
	for i := len(c.frames) - 1; i >= 0; i-- {
		val, ok := lookupField(c.frames[i], head)
		if !ok {
			continue
		}
		for _, seg := range key.Segments[1:] {
			if c.strict && !isContainer(val) {
				return NilValue{}, false, ErrType
			}
			val, ok = lookupField(val, seg)
			if !ok {
				return NilValue{}, false, nil
			}
		}
		return val, true, nil
	}
	return NilValue{}, false, nil
}

// autocall implements the zero-arg-method invocation rule (§4.4): a
// resolved CallableValue requiring no arguments is invoked in place,
// its result substituted; one requiring arguments cannot be auto-invoked
// and resolving it fails with ErrArity. Non-callable values pass through
// unchanged. This is the reference renderer's analogue of emitc's
// stache_autocall and is distinct from — and does not implement — a
// Mustache "Lambda" section, which invokes a callable with its own
// section body's rendered text.
func autocall(v Value) (Value, error) {
	c, ok := v.(CallableValue)
	if !ok {
		return v, nil
	}
	if c.Arity != 0 {
		return nil, ErrArity
	}
	return c.Fn(), nil
}

// PartialNotFoundError reports a {{> name}} tag with no matching partial.
type PartialNotFoundError struct {
	Name string
}

func (e *PartialNotFoundError) Error() string {
	return fmt.Sprintf("partial not found: %q", e.Name)
}

// Renderer walks a parsed Document against a Value tree, resolving
// {{> name}} partials out of Partials by logical name. Strict enables
// the type_error check on dotted resolution against a non-container
// value (§7); the default, non-strict behavior treats it the same as a
// missing key.
type Renderer struct {
	Partials map[string]*mustache.Document
	Strict   bool
}

// Render produces the full text output of rendering doc against top. On
// error, no partial output is returned.
func (r *Renderer) Render(doc *mustache.Document, top Value) (string, error) {
	var sb strings.Builder
	ctx := newContext(top, r.Strict)
	if err := r.renderNodes(&sb, doc.Children, ctx); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *Renderer) renderNodes(w *strings.Builder, nodes []mustache.Node, ctx *context) error {
	for _, n := range nodes {
		if err := r.renderNode(w, n, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderNode(w *strings.Builder, n mustache.Node, ctx *context) error {
	switch t := n.(type) {
	case *mustache.Text:
		w.WriteString(t.Bytes)

	case *mustache.Interpolation:
		val, _, err := ctx.resolve(t.Key)
		if err != nil {
			return err
		}
		val, err = autocall(val)
		if err != nil {
			return err
		}
		s := val.ToString()
		if t.Escape {
			s = escapeHTML(s)
		}
		w.WriteString(s)

	case *mustache.Section:
		return r.renderSection(w, t, ctx)

	case *mustache.Partial:
		return r.renderPartial(w, t, ctx)
	}
	return nil
}

func (r *Renderer) renderSection(w *strings.Builder, sec *mustache.Section, ctx *context) error {
	val, present, err := ctx.resolve(sec.Key)
	if err != nil {
		return err
	}
	val, err = autocall(val)
	if err != nil {
		return err
	}

	if sec.Inverted {
		if !present || !val.Truthy() {
			return r.renderNodes(w, sec.Children, ctx)
		}
		return nil
	}

	if !present || !val.Truthy() {
		return nil
	}

	switch v := val.(type) {
	case ListValue:
		for _, item := range v {
			ctx.push(item)
			err := r.renderNodes(w, sec.Children, ctx)
			ctx.pop()
			if err != nil {
				return err
			}
		}
		return nil

	default:
		ctx.push(val)
		err := r.renderNodes(w, sec.Children, ctx)
		ctx.pop()
		return err
	}
}

func (r *Renderer) renderPartial(w *strings.Builder, p *mustache.Partial, ctx *context) error {
	sub, ok := r.Partials[p.Key]
	if !ok {
		return &PartialNotFoundError{Name: p.Key}
	}
	if p.Indent == "" {
		return r.renderNodes(w, sub.Children, ctx)
	}
	var inner strings.Builder
	if err := r.renderNodes(&inner, sub.Children, ctx); err != nil {
		return err
	}
	w.WriteString(reindent(inner.String(), p.Indent))
	return nil
}

// reindent prepends indent to every line of s except a trailing empty
// line produced by a final newline, mirroring how a standalone partial
// tag's own indentation is re-applied to each line the partial emits.
func reindent(s, indent string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == len(lines)-1 && lines[i] == "" {
			continue
		}
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

var htmlEscapes = map[byte]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&#39;",
}

func escapeHTML(s string) string {
	var needsEscape bool
	for i := 0; i < len(s); i++ {
		if _, ok := htmlEscapes[s[i]]; ok {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if esc, ok := htmlEscapes[s[i]]; ok {
			sb.WriteString(esc)
		} else {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

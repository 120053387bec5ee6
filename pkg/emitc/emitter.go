package emitc

import (
	"fmt"
	"strings"

	"github.com/stache-compiler/stache/pkg/diag"
	"github.com/stache-compiler/stache/pkg/mustache"
)

// templateUnit is one compiled template: its logical and mangled names,
// and the complete C function definition lowering its AST.
type templateUnit struct {
	Name    string
	Mangled string
	Body    string
}

// compileTemplate lowers doc into a templateUnit. known holds the mangled
// name of every template discovered in this run (including doc's own),
// used to validate partial references and to resolve their call targets.
// Diagnostics are appended to bag rather than returned, so a partial
// failure in one template never stops the rest of the run.
func compileTemplate(name, path string, doc *mustache.Document, known map[string]string, interner *stringTable, bag *diag.Bag, strict bool) *templateUnit {
	c := &compiler{
		name:    name,
		path:    path,
		known:   known,
		interner: interner,
		bag:     bag,
		strict:  strict,
		scope:   newScope(),
		helpers: newHelperCounter("v"),
	}
	c.emitNodes(doc.Children)

	mangled := known[name]
	var sb strings.Builder
	fmt.Fprintf(&sb, "int %s(writer_t *w, value_t ctx0) {\n", mangled)
	sb.WriteString(c.body.String())
	sb.WriteString("\treturn STACHE_OK;\n")
	sb.WriteString("}\n")

	return &templateUnit{Name: name, Mangled: mangled, Body: sb.String()}
}

// compiler holds the per-template state needed while walking one
// Document's AST: the compile-time frame-name stack, the shared string
// interning table, and accumulated diagnostics.
type compiler struct {
	name    string
	path    string
	known   map[string]string
	interner *stringTable
	bag     *diag.Bag
	strict  bool

	scope   *scope
	helpers *helperCounter
	body    strings.Builder
}

func (c *compiler) emitNodes(nodes []mustache.Node) {
	for _, n := range nodes {
		c.emitNode(n)
	}
}

func (c *compiler) emitNode(n mustache.Node) {
	switch t := n.(type) {
	case *mustache.Text:
		c.emitText(t)
	case *mustache.Interpolation:
		c.emitInterpolation(t)
	case *mustache.Section:
		c.emitSection(t)
	case *mustache.Partial:
		c.emitPartial(t)
	}
}

func (c *compiler) emitText(t *mustache.Text) {
	sym := c.interner.Intern(t.Bytes)
	fmt.Fprintf(&c.body, "\twriter_write(w, %s, sizeof(%s) - 1);\n", sym, sym)
}

func (c *compiler) emitInterpolation(interp *mustache.Interpolation) {
	v, present := c.resolveValue(interp.Key)
	fn := "writer_emit_escaped"
	if !interp.Escape {
		fn = "writer_emit_raw"
	}
	if present == "1" {
		fmt.Fprintf(&c.body, "\t%s(w, %s);\n", fn, v)
		return
	}
	fmt.Fprintf(&c.body, "\tif (%s) {\n\t\t%s(w, %s);\n\t}\n", present, fn, v)
}

func (c *compiler) emitSection(sec *mustache.Section) {
	v, present := c.resolveValue(sec.Key)
	truthy := fmt.Sprintf("(%s && truthiness(%s))", present, v)

	if sec.Inverted {
		fmt.Fprintf(&c.body, "\tif (!%s) {\n", truthy)
		c.emitNodes(sec.Children)
		fmt.Fprintf(&c.body, "\t}\n")
		return
	}

	fmt.Fprintf(&c.body, "\tif (%s) {\n", truthy)
	fmt.Fprintf(&c.body, "\t\tif (kind(%s) == STACHE_LIST) {\n", v)

	lenVar := c.helpers.id()
	idxVar := c.helpers.id()
	doneVar := c.helpers.id()
	fmt.Fprintf(&c.body, "\t\t\tsize_t %s = length(%s);\n", lenVar, v)
	fmt.Fprintf(&c.body, "\t\t\tfor (size_t %s = 0; %s < %s; %s++) {\n", idxVar, idxVar, lenVar, idxVar)
	fmt.Fprintf(&c.body, "\t\t\t\tint %s;\n", doneVar)
	listCtx := c.scope.nextName()
	fmt.Fprintf(&c.body, "\t\t\t\tvalue_t %s = iter_next(%s, %s, &%s);\n", listCtx, v, idxVar, doneVar)
	c.scope.enter(listCtx)
	c.emitNodes(sec.Children)
	c.scope.leave()
	fmt.Fprintf(&c.body, "\t\t\t}\n")

	fmt.Fprintf(&c.body, "\t\t} else {\n")
	pushCtx := c.scope.nextName()
	fmt.Fprintf(&c.body, "\t\t\tvalue_t %s = %s;\n", pushCtx, v)
	c.scope.enter(pushCtx)
	c.emitNodes(sec.Children)
	c.scope.leave()
	fmt.Fprintf(&c.body, "\t\t}\n")

	fmt.Fprintf(&c.body, "\t}\n")
}

func (c *compiler) emitPartial(p *mustache.Partial) {
	mangled, ok := c.known[p.Key]
	if !ok {
		if c.strict {
			c.bag.Add(diag.Diagnostic{
				Path: c.path, Kind: diag.Error,
				Message: (&EmitError{Kind: UnresolvedPartial, TemplateName: c.name, PartialName: p.Key}).Error(),
			})
		} else {
			c.bag.Add(diag.Diagnostic{
				Path: c.path, Kind: diag.Warning,
				Message: (&EmitError{Kind: UnresolvedPartial, TemplateName: c.name, PartialName: p.Key}).Error() + "; renders as a no-op at runtime",
			})
			fmt.Fprintf(&c.body, "\t/* partial %q is unresolved; omitted */\n", p.Key)
		}
		return
	}

	top := c.scope.frames()[len(c.scope.frames())-1]
	rv := c.helpers.id()
	fmt.Fprintf(&c.body, "\tint %s;\n", rv)
	if p.Indent == "" {
		fmt.Fprintf(&c.body, "\t%s = %s(w, %s);\n", rv, mangled, top)
		fmt.Fprintf(&c.body, "\tif (%s) {\n\t\treturn %s;\n\t}\n", rv, rv)
		return
	}

	indentSym := c.interner.Intern(p.Indent)
	iw := c.helpers.id()
	fmt.Fprintf(&c.body, "\t{\n")
	fmt.Fprintf(&c.body, "\t\twriter_t *%s = writer_with_indent(w, %s, sizeof(%s) - 1);\n", iw, indentSym, indentSym)
	fmt.Fprintf(&c.body, "\t\t%s = %s(%s, %s);\n", rv, mangled, iw, top)
	fmt.Fprintf(&c.body, "\t\twriter_end_indent(%s);\n", iw)
	fmt.Fprintf(&c.body, "\t}\n")
	fmt.Fprintf(&c.body, "\tif (%s) {\n\t\treturn %s;\n\t}\n", rv, rv)
}

// resolveValue emits the code to resolve key against the current scope
// and, if present, auto-invoke any zero-arg-callable result (§4.4
// "Invocation of zero-arg methods"). It returns the C value_t variable
// holding the resolved result and a C boolean expression — either the
// literal "1" for the always-present implicit iterator, or a present-flag
// variable name — that callers must guard any use of the value with.
func (c *compiler) resolveValue(key mustache.Key) (valueVar, presentExpr string) {
	v := c.helpers.id()

	if key.Dot {
		top := c.scope.frames()[len(c.scope.frames())-1]
		fmt.Fprintf(&c.body, "\tvalue_t %s = %s;\n", v, top)
		return v, "1"
	}

	present := c.helpers.id()
	seg := c.helpers.id()
	frames := c.helpers.id()

	segLits := make([]string, len(key.Segments))
	for i, s := range key.Segments {
		segLits[i] = cQuote(s)
	}

	fmt.Fprintf(&c.body, "\tvalue_t %s;\n", v)
	fmt.Fprintf(&c.body, "\tint %s;\n", present)
	fmt.Fprintf(&c.body, "\t{\n")
	fmt.Fprintf(&c.body, "\t\tconst char *const %s[] = {%s};\n", seg, strings.Join(segLits, ", "))
	fmt.Fprintf(&c.body, "\t\tvalue_t %s[] = {%s};\n", frames, strings.Join(c.scope.frames(), ", "))
	fmt.Fprintf(&c.body, "\t\t%s = stache_resolve(%s, %d, %s, %d, &%s);\n", v, frames, len(c.scope.frames()), seg, len(key.Segments), present)
	fmt.Fprintf(&c.body, "\t}\n")

	arity := c.helpers.id()
	fmt.Fprintf(&c.body, "\tint %s = 0;\n", arity)
	fmt.Fprintf(&c.body, "\tif (%s) {\n", present)
	fmt.Fprintf(&c.body, "\t\t%s = stache_autocall(%s, &%s);\n", v, v, arity)
	fmt.Fprintf(&c.body, "\t\tif (%s) {\n\t\t\treturn STACHE_ERR_ARITY;\n\t\t}\n", arity)
	fmt.Fprintf(&c.body, "\t}\n")

	return v, present
}

package emitc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stache-compiler/stache/pkg/diag"
	"github.com/stache-compiler/stache/pkg/discovery"
	"github.com/stache-compiler/stache/pkg/mustache"
)

// Source is the minimal view CompileAll needs of a discovered template,
// built from each *discovery.Template by FromTemplates.
type Source struct {
	Name string
	Path string
	Body []byte
}

// FromTemplates adapts loaded discovery.Template values into Sources.
func FromTemplates(templates []*discovery.Template) []Source {
	out := make([]Source, len(templates))
	for i, t := range templates {
		out[i] = Source{Name: t.Name, Path: t.Path, Body: t.Source}
	}
	return out
}

// Result is the outcome of a compilation run: the assembled C source
// (valid only when the bag holds no errors) and every diagnostic
// collected across every template.
type Result struct {
	Output string
	Bag    *diag.Bag
}

// CompileAll lexes, parses, and emits every source, in lexicographic
// order by logical name regardless of the order given (§5), then
// assembles one translation unit. emitTarget selects the trailing
// binding glue ("ruby", or "" for none). No output is produced — Output
// is empty — if any diagnostic in the returned bag is an error; the
// caller is expected to treat that as exit code 1 and write nothing.
func CompileAll(sources []Source, emitTarget string, strict bool) *Result {
	bag := &diag.Bag{}

	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	known := make(map[string]string, len(ordered))
	for _, s := range ordered {
		known[s.Name] = mangle(s.Name)
	}

	docs := make(map[string]*mustache.Document, len(ordered))
	for _, s := range ordered {
		doc, err := mustache.Parse(s.Body)
		if err != nil {
			recordParseFailure(bag, s.Path, err)
			continue
		}
		docs[s.Name] = doc
	}

	interner := newStringTable()
	var units []*templateUnit
	for _, s := range ordered {
		doc, ok := docs[s.Name]
		if !ok {
			continue
		}
		units = append(units, compileTemplate(s.Name, s.Path, doc, known, interner, bag, strict))
	}

	if bag.HasErrors() {
		return &Result{Bag: bag}
	}

	output := assemble(ordered, units, interner, emitTarget)
	return &Result{Output: output, Bag: bag}
}

func recordParseFailure(bag *diag.Bag, path string, err error) {
	switch e := err.(type) {
	case *mustache.LexError:
		bag.Add(diag.Diagnostic{Path: path, Line: e.Pos.Line, Col: e.Pos.Col, Kind: diag.Error, Message: e.Error()})
	case *mustache.ParseError:
		bag.Add(diag.Diagnostic{Path: path, Line: e.Pos.Line, Col: e.Pos.Col, Kind: diag.Error, Message: e.Error()})
	default:
		bag.Errorf(path, 0, 0, "%v", err)
	}
}

// assemble concatenates the preamble, binding glue, interned string
// table, forward declarations, per-template function bodies, and
// dispatch table into one translation unit (§4.5).
func assemble(sources []Source, units []*templateUnit, interner *stringTable, emitTarget string) string {
	var sb strings.Builder

	sb.WriteString(runtimeHeader)
	if emitTarget == "ruby" {
		sb.WriteString(rubyBindingGlue)
	}

	sb.WriteString("\n/* Interned template text. */\n")
	for _, e := range interner.Entries() {
		fmt.Fprintf(&sb, "static const char %s[] = %s;\n", e.Symbol, cQuote(e.Value))
	}

	sb.WriteString("\n/* Forward declarations, so a partial may reference a template emitted\n")
	sb.WriteString(" * later in this file. */\n")
	for _, s := range sources {
		fmt.Fprintf(&sb, "int %s(writer_t *w, value_t ctx0);\n", mangle(s.Name))
	}

	sb.WriteString("\n/* Template bodies. */\n")
	for _, u := range units {
		sb.WriteString("\n")
		sb.WriteString(u.Body)
	}

	sb.WriteString("\n/* Dispatch table. */\n")
	sb.WriteString("typedef struct { const char *name; int (*fn)(writer_t *, value_t); } stache_dispatch_entry;\n\n")
	sb.WriteString("static const stache_dispatch_entry stache_dispatch_table[] = {\n")
	for _, s := range sources {
		fmt.Fprintf(&sb, "\t{%s, %s},\n", cQuote(s.Name), mangle(s.Name))
	}
	sb.WriteString("};\n\n")
	sb.WriteString("int (*stache_dispatch(const char *name))(writer_t *, value_t) {\n")
	sb.WriteString("\tsize_t n = sizeof(stache_dispatch_table) / sizeof(stache_dispatch_table[0]);\n")
	sb.WriteString("\tfor (size_t i = 0; i < n; i++) {\n")
	sb.WriteString("\t\tif (strcmp(stache_dispatch_table[i].name, name) == 0) {\n")
	sb.WriteString("\t\t\treturn stache_dispatch_table[i].fn;\n")
	sb.WriteString("\t\t}\n")
	sb.WriteString("\t}\n")
	sb.WriteString("\treturn NULL;\n")
	sb.WriteString("}\n")

	if emitTarget == "ruby" {
		sb.WriteString(rubyBindingGlue)
	}

	return sb.String()
}

// WriteAtomic writes content to path via a temp file in the same
// directory followed by a rename, so a failed or interrupted write never
// leaves a partial output file in place (§7).
func WriteAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stachec-*.c.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

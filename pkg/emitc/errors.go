package emitc

import "fmt"

// EmitErrorKind enumerates the ways emission can fail beyond a malformed
// AST (which never reaches this package — pkg/mustache rejects it first).
type EmitErrorKind int

const (
	// UnresolvedPartial marks a {{> name}} tag whose target is not among
	// the templates known to this compilation run. Warning by default;
	// fatal under --strict (§7).
	UnresolvedPartial EmitErrorKind = iota
)

func (k EmitErrorKind) String() string {
	switch k {
	case UnresolvedPartial:
		return "unresolved partial"
	default:
		return "emit error"
	}
}

// EmitError reports a problem discovered while lowering a template's AST
// to C, scoped to the template and (where relevant) the partial it names.
type EmitError struct {
	Kind         EmitErrorKind
	TemplateName string
	PartialName  string
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("%s: template %q references unknown partial %q", e.Kind, e.TemplateName, e.PartialName)
}

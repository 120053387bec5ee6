package mustache

// Node is any node in a parsed template's AST.
type Node interface {
	node()
}

// Document is the synthetic root of a template: a Section with no key,
// per §4.3.
type Document struct {
	Children []Node
}

func (*Document) node() {}

// Text is a literal output chunk. It is never empty; text runs left empty
// by standalone stripping are dropped by the whitespace pass.
type Text struct {
	Bytes string
}

func (*Text) node() {}

// Interpolation is a single value lookup, HTML-escaped unless Escape is
// false (the {{{ }}} and {{& }} forms).
type Interpolation struct {
	Key    Key
	Escape bool
}

func (*Interpolation) node() {}

// Section is a conditional (Inverted == false) or negated-conditional
// (Inverted == true) block, or an iteration over a list value.
type Section struct {
	Key      Key
	Inverted bool
	Children []Node
}

func (*Section) node() {}

// Partial includes another template by logical name. Indent holds the
// leading whitespace stripped from the partial tag's own line by the
// standalone-whitespace pass, to be re-applied to every line the partial
// emits.
type Partial struct {
	Key    string
	Indent string
}

func (*Partial) node() {}

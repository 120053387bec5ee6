package mustache

// openSection tracks one level of the section stack while parsing: the
// node being built, and the tag that opened it (for mismatched-close
// diagnostics).
type openSection struct {
	sec      *Section
	openTag  string
	openPos  Pos
}

// Parse lexes, applies the standalone-whitespace pass, and folds the
// resulting token stream into a Document, per §4.3.
func Parse(src []byte) (*Document, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	tokens = stripStandalone(tokens)
	return parseTokens(tokens)
}

func parseTokens(tokens []Token) (*Document, error) {
	doc := &Document{}
	root := &Section{Children: nil}
	stack := []openSection{{sec: root}}

	appendChild := func(n Node) {
		top := &stack[len(stack)-1]
		top.sec.Children = append(top.sec.Children, n)
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case KText:
			appendChild(&Text{Bytes: tok.Text})

		case KVariable:
			key, err := parseKey(tok.Text)
			if err != nil {
				return nil, withPos(err, tok.Pos)
			}
			appendChild(&Interpolation{Key: key, Escape: true})

		case KUnescaped:
			key, err := parseKey(tok.Text)
			if err != nil {
				return nil, withPos(err, tok.Pos)
			}
			appendChild(&Interpolation{Key: key, Escape: false})

		case KSectionOpen, KInvertedOpen:
			key, err := parseKey(tok.Text)
			if err != nil {
				return nil, withPos(err, tok.Pos)
			}
			sec := &Section{Key: key, Inverted: tok.Kind == KInvertedOpen}
			appendChild(sec)
			stack = append(stack, openSection{sec: sec, openTag: tok.Text, openPos: tok.Pos})

		case KClose:
			if len(stack) == 1 {
				return nil, &ParseError{Kind: UnexpectedClose, Key: tok.Text, Pos: tok.Pos}
			}
			top := stack[len(stack)-1]
			if top.openTag != tok.Text {
				return nil, &ParseError{
					Kind: UnexpectedClose, Key: tok.Text, Expected: top.openTag, Pos: tok.Pos,
				}
			}
			stack = stack[:len(stack)-1]

		case KPartial:
			appendChild(&Partial{Key: tok.Text, Indent: tok.Indent})

		case KComment, KSetDelimiter:
			// No AST representation; these affect only lexing.

		case KEOF:
			if len(stack) != 1 {
				unclosed := stack[len(stack)-1]
				return nil, &ParseError{Kind: UnclosedSection, Key: unclosed.openTag, Pos: unclosed.openPos}
			}
		}
	}

	doc.Children = mergeText(root.Children)
	return doc, nil
}

// mergeText collapses adjacent Text nodes produced across token boundaries
// (a property the whitespace pass and lexer do not themselves guarantee)
// and recurses into Section children.
func mergeText(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if sec, ok := n.(*Section); ok {
			sec.Children = mergeText(sec.Children)
			out = append(out, sec)
			continue
		}
		if t, ok := n.(*Text); ok {
			if len(out) > 0 {
				if prev, ok := out[len(out)-1].(*Text); ok {
					prev.Bytes += t.Bytes
					continue
				}
			}
		}
		out = append(out, n)
	}
	return out
}

// withPos attaches a position to a *ParseError that was constructed
// without one (key-parsing errors originate in key.go, which has no
// access to token positions).
func withPos(err error, pos Pos) error {
	if pe, ok := err.(*ParseError); ok && pe.Pos == (Pos{}) {
		pe.Pos = pos
	}
	return err
}

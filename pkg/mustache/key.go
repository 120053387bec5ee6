package mustache

import "strings"

// Key is a parsed dotted lookup path, or the implicit iterator sentinel
// ".". Segments are never empty and never contain '.', whitespace, '{',
// '}', or '='.
type Key struct {
	Dot      bool
	Segments []string
}

func (k Key) String() string {
	if k.Dot {
		return "."
	}
	return strings.Join(k.Segments, ".")
}

func (k Key) Equal(other Key) bool {
	if k.Dot != other.Dot {
		return false
	}
	if len(k.Segments) != len(other.Segments) {
		return false
	}
	for i := range k.Segments {
		if k.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}

func isValidSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case '.', '{', '}', '=', ' ', '\t', '\r', '\n', '\f', '\v':
			return false
		}
	}
	return true
}

// parseKey splits a raw dotted key string into a Key, validating each
// segment per §4.3's key-parsing rule.
func parseKey(raw string) (Key, error) {
	if raw == "" {
		return Key{}, &ParseError{Kind: EmptyKey, Message: "key must not be empty"}
	}
	if raw == "." {
		return Key{Dot: true}, nil
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if !isValidSegment(p) {
			return Key{}, &ParseError{Kind: InvalidKey, Message: "invalid key segment in " + raw}
		}
	}
	return Key{Segments: parts}, nil
}

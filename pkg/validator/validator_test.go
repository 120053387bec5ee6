package validator

import (
	"fmt"
	"testing"
)

func TestNotEmpty(t *testing.T) {
	if err := NotEmpty("x", "field"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NotEmpty("", "field"); err == nil {
		t.Fatalf("expected an error for an empty field")
	}
}

func TestMatchesAllowed(t *testing.T) {
	allowed := []string{"c", "ruby"}
	if err := MatchesAllowed("ruby", allowed, "emit"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := MatchesAllowed("python", allowed, "emit"); err == nil {
		t.Fatalf("expected an error for a disallowed value")
	}
}

func TestNoDuplicates(t *testing.T) {
	if err := NoDuplicates([]string{"a", "b"}, "names"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NoDuplicates([]string{"a", "a"}, "names"); err == nil {
		t.Fatalf("expected an error for duplicate values")
	}
}

func TestMapDict(t *testing.T) {
	items := map[string]string{"a": "a", "b": "b"}
	if err := MapDict(items, func(key, value string) error {
		if key != value {
			return fmt.Errorf("key %q does not match value %q", key, value)
		}
		return nil
	}, "index"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := map[string]string{"a": "mismatched"}
	if err := MapDict(bad, func(key, value string) error {
		if key != value {
			return fmt.Errorf("key %q does not match value %q", key, value)
		}
		return nil
	}, "index"); err == nil {
		t.Fatalf("expected an error for a mismatched entry")
	}
}

func TestAllReturnsFirstError(t *testing.T) {
	if err := All(nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := NotEmpty("", "a")
	if err := All(nil, first, NotEmpty("", "b")); err != first {
		t.Fatalf("expected the first non-nil error, got %v", err)
	}
}

type fakeTemplate struct{ name string }

func (f fakeTemplate) Validate() error {
	return NotEmpty(f.name, "name")
}

func TestEach(t *testing.T) {
	ok := []fakeTemplate{{name: "a"}, {name: "b"}}
	if err := Each(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []fakeTemplate{{name: "a"}, {name: ""}}
	if err := Each(bad); err == nil {
		t.Fatalf("expected an error for item 1")
	}
}

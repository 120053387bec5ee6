package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDiscoverFindsNestedTemplates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.mustache"), "hi")
	writeFile(t, filepath.Join(dir, "users", "profile.mustache"), "user")
	writeFile(t, filepath.Join(dir, "README.md"), "not a template")

	templates, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d: %+v", len(templates), templates)
	}
	if templates[0].Name != "index" {
		t.Fatalf("expected first template 'index', got %q", templates[0].Name)
	}
	if templates[1].Name != "users/profile" {
		t.Fatalf("expected second template 'users/profile', got %q", templates[1].Name)
	}
}

func TestDiscoverIsSortedByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "zeta.mustache"), "z")
	writeFile(t, filepath.Join(dir, "alpha.mustache"), "a")

	templates, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if templates[0].Name != "alpha" || templates[1].Name != "zeta" {
		t.Fatalf("expected sorted names, got %+v", templates)
	}
}

func TestLoadAllPopulatesSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.mustache"), "hello {{name}}")

	templates, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if err := LoadAll(templates); err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if string(templates[0].Source) != "hello {{name}}" {
		t.Fatalf("unexpected source: %q", templates[0].Source)
	}
}

func TestTemplateValidateRejectsEmptyName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.mustache"), "hi")
	writeFile(t, filepath.Join(dir, ".mustache"), "blank name")

	templates, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	for _, tpl := range templates {
		err := tpl.Validate()
		if tpl.Name == "" && err == nil {
			t.Fatalf("expected Validate to reject an empty logical name for %q", tpl.Path)
		}
		if tpl.Name != "" && err != nil {
			t.Fatalf("unexpected error validating %q: %v", tpl.Name, err)
		}
	}
}

func TestByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mustache"), "")
	writeFile(t, filepath.Join(dir, "b.mustache"), "")

	templates, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	idx := ByName(templates)
	if idx["a"] == nil || idx["b"] == nil {
		t.Fatalf("expected both templates indexed by name, got %+v", idx)
	}
}

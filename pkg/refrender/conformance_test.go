package refrender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stache-compiler/stache/pkg/mustache"
	"gopkg.in/yaml.v3"
)

// fixture is the YAML shape described in the spec's end-to-end test
// fixtures: a template, its data, any partials it needs, and the exact
// text it must render to.
type fixture struct {
	Name     string            `yaml:"name"`
	Template string            `yaml:"template"`
	Data     map[string]any    `yaml:"data"`
	Partials map[string]string `yaml:"partials"`
	Expected string            `yaml:"expected"`
}

func loadFixtures(t *testing.T, dir string) []fixture {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read testdata dir: %v", err)
	}
	var out []fixture
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		var f fixture
		if err := yaml.Unmarshal(b, &f); err != nil {
			t.Fatalf("unmarshal %s: %v", e.Name(), err)
		}
		if f.Name == "" {
			f.Name = e.Name()
		}
		out = append(out, f)
	}
	return out
}

func TestConformanceFixtures(t *testing.T) {
	fixtures := loadFixtures(t, "testdata/conformance")
	if len(fixtures) == 0 {
		t.Fatalf("expected at least one conformance fixture")
	}
	for _, fx := range fixtures {
		t.Run(fx.Name, func(t *testing.T) {
			doc, err := mustache.Parse([]byte(fx.Template))
			if err != nil {
				t.Fatalf("parse template: %v", err)
			}
			partials := make(map[string]*mustache.Document, len(fx.Partials))
			for name, src := range fx.Partials {
				pdoc, err := mustache.Parse([]byte(src))
				if err != nil {
					t.Fatalf("parse partial %q: %v", name, err)
				}
				partials[name] = pdoc
			}
			r := &Renderer{Partials: partials}
			top := FromGo(fx.Data)
			got, err := r.Render(doc, top)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if got != fx.Expected {
				t.Fatalf("got %q, want %q", got, fx.Expected)
			}
		})
	}
}

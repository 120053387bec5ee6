// Package discovery walks a directory tree of .mustache files and derives
// each one's logical template name, the identifier later stages use to
// refer to it (as a partial target, as a generated C function, and as a
// symbol exported to the host language).
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stache-compiler/stache/pkg/validator"
)

const extension = ".mustache"

// Template is one discovered source file: its path on disk and the
// logical name derived from its path relative to the scanned root.
type Template struct {
	// Path is the file's location on disk.
	Path string
	// Name is the path relative to the scan root, with the .mustache
	// extension removed and OS separators normalized to '/'. A file at
	// "<root>/users/profile.mustache" has Name "users/profile".
	Name string
	// Source holds the raw template bytes, populated by Load.
	Source []byte
}

// Discover recursively walks dir collecting every .mustache file. Templates
// are returned sorted by Name, so downstream compilation is deterministic
// regardless of the filesystem's directory-entry order.
func Discover(dir string) ([]*Template, error) {
	var out []*Template
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, extension) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(rel, extension)
		name = filepath.ToSlash(name)
		out = append(out, &Template{Path: path, Name: name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Validate reports whether t was discovered with a usable logical name,
// satisfying validator.Validatable. A file whose name is exactly the
// ".mustache" extension (no basename) derives an empty logical name,
// which would collide with nothing yet resolve to nothing either.
func (t *Template) Validate() error {
	return validator.NotEmpty(t.Name, "template name for "+t.Path)
}

// Load reads the template's source from disk into Source.
func (t *Template) Load() error {
	b, err := os.ReadFile(t.Path)
	if err != nil {
		return err
	}
	t.Source = b
	return nil
}

// LoadAll loads every template's source, stopping at the first read error.
func LoadAll(templates []*Template) error {
	for _, tpl := range templates {
		if err := tpl.Load(); err != nil {
			return err
		}
	}
	return nil
}

// ByName indexes a template slice by logical name, for partial resolution.
func ByName(templates []*Template) map[string]*Template {
	idx := make(map[string]*Template, len(templates))
	for _, tpl := range templates {
		idx[tpl.Name] = tpl
	}
	return idx
}

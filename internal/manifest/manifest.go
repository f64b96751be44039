package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/orderedmap"
)

// Manifest wraps a project's package.json. Keys keep their on-disk order so
// a merge rewrites only what it touched.
type Manifest struct {
	doc *orderedmap.OrderedMap
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{doc: orderedmap.New()}
}

// Read loads package.json from disk. A missing file yields an empty
// manifest, matching how a fresh project starts out.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	doc := orderedmap.New()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &Manifest{doc: doc}, nil
}

// Write saves the manifest atomically with two-space indentation.
func (m *Manifest) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure manifest dir: %w", err)
	}

	data, err := json.MarshalIndent(m.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Script returns the command for a script name, if present.
func (m *Manifest) Script(name string) (string, bool) {
	scripts, ok := m.scripts()
	if !ok {
		return "", false
	}
	v, ok := scripts.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SetScript inserts or replaces a script entry.
func (m *Manifest) SetScript(name, command string) {
	scripts, ok := m.scripts()
	if !ok {
		scripts = *orderedmap.New()
	}
	scripts.Set(name, command)
	m.doc.Set("scripts", scripts)
}

// DeleteScript removes a script entry if present.
func (m *Manifest) DeleteScript(name string) {
	scripts, ok := m.scripts()
	if !ok {
		return
	}
	scripts.Delete(name)
	m.doc.Set("scripts", scripts)
}

// ScriptNames returns script keys in manifest order.
func (m *Manifest) ScriptNames() []string {
	scripts, ok := m.scripts()
	if !ok {
		return nil
	}
	return scripts.Keys()
}

func (m *Manifest) scripts() (orderedmap.OrderedMap, bool) {
	v, ok := m.doc.Get("scripts")
	if !ok {
		return orderedmap.OrderedMap{}, false
	}
	scripts, ok := v.(orderedmap.OrderedMap)
	return scripts, ok
}

// dependencySections are the package.json keys consulted when de-duplicating
// an install request.
var dependencySections = []string{"dependencies", "devDependencies", "peerDependencies"}

// PinnedVersion reports whether a package name is already declared in any
// dependency section, and the version spec pinned there.
func (m *Manifest) PinnedVersion(name string) (string, bool) {
	for _, section := range dependencySections {
		v, ok := m.doc.Get(section)
		if !ok {
			continue
		}
		deps, ok := v.(orderedmap.OrderedMap)
		if !ok {
			continue
		}
		if version, ok := deps.Get(name); ok {
			s, _ := version.(string)
			return s, true
		}
	}
	return "", false
}

package manifest

import (
	"fmt"
	"strings"

	"amaris/pkg/provider"
)

// ConflictError reports a script key that already exists with a different
// command. Callers choose between aborting and re-running with overwrite.
type ConflictError struct {
	Key      string
	Existing string
	Incoming string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("script %q already defined as %q (incoming %q)", e.Key, e.Existing, e.Incoming)
}

// ScriptChange records one script mutation performed by MergeScripts, with
// enough detail to reverse it exactly.
type ScriptChange struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Existed bool   `json:"existed"`
	Prior   string `json:"prior,omitempty"`
}

// MergeScripts merges provider script entries into the manifest. Absent keys
// are inserted; keys holding an identical command are a no-op; keys holding a
// different command raise ConflictError unless overwrite is set, in which
// case the prior value is captured in the returned change. The manifest is
// untouched when an error is returned.
func (m *Manifest) MergeScripts(entries []provider.ScriptEntry, overwrite bool) ([]ScriptChange, error) {
	var changes []ScriptChange

	for _, entry := range entries {
		existing, ok := m.Script(entry.Name)
		if ok && existing == entry.Script {
			continue
		}
		if ok && !overwrite {
			return nil, ConflictError{Key: entry.Name, Existing: existing, Incoming: entry.Script}
		}
		changes = append(changes, ScriptChange{
			Name:    entry.Name,
			Command: entry.Script,
			Existed: ok,
			Prior:   existing,
		})
	}

	for _, change := range changes {
		m.SetScript(change.Name, change.Command)
	}
	return changes, nil
}

// RevertScript undoes one recorded script change, but only while the current
// value still matches what the change wrote. Edits made after install stay
// untouched; the return value reports whether anything was reverted.
func (m *Manifest) RevertScript(change ScriptChange) bool {
	current, ok := m.Script(change.Name)
	if !ok || current != change.Command {
		return false
	}
	if change.Existed {
		m.SetScript(change.Name, change.Prior)
	} else {
		m.DeleteScript(change.Name)
	}
	return true
}

// MergePackages filters an install request against packages already declared
// in the manifest. A pinned manifest version wins over the requested spec;
// the remainder is returned in request order without duplicates.
func (m *Manifest) MergePackages(requested []string) []string {
	var missing []string
	seen := map[string]bool{}

	for _, spec := range requested {
		name := PackageName(spec)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, pinned := m.PinnedVersion(name); pinned {
			continue
		}
		missing = append(missing, spec)
	}
	return missing
}

// PackageName strips a version suffix from a package spec. Scoped names keep
// their leading @ ("@biomejs/biome@1.9.4" -> "@biomejs/biome").
func PackageName(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return ""
	}
	if idx := strings.LastIndex(spec, "@"); idx > 0 {
		return spec[:idx]
	}
	return spec
}

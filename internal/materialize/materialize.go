package materialize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"amaris/internal/vscode"
	"amaris/pkg/provider"
)

// vscodeSettingsRel is the one destination that is deep-merged instead of
// overwritten, so providers can layer editor settings.
const vscodeSettingsRel = ".vscode/settings.json"

// PathEscapeError reports a configuration entry whose destination normalizes
// outside the project root. It aborts the apply before any write.
type PathEscapeError struct {
	Location string
	Name     string
}

func (e PathEscapeError) Error() string {
	return fmt.Sprintf("destination %s/%s escapes the project root", e.Location, e.Name)
}

// Write records one materialized file with enough state to undo it.
type Write struct {
	// Path is relative to the project root, slash-separated.
	Path     string `json:"path"`
	Existed  bool   `json:"existed"`
	Snapshot []byte `json:"snapshot,omitempty"`
	Merged   bool   `json:"merged,omitempty"`
}

// Failure records one entry that could not be materialized.
type Failure struct {
	Path string
	Err  error
}

// Result aggregates per-entry outcomes of one materialize pass.
type Result struct {
	Writes   []Write
	Failures []Failure
}

// Failed reports whether any entry failed.
func (r Result) Failed() bool { return len(r.Failures) > 0 }

// Err collapses the failures into a single error, or nil.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		msgs[i] = fmt.Sprintf("%s: %v", f.Path, f.Err)
	}
	return fmt.Errorf("materialize: %s", strings.Join(msgs, "; "))
}

// Materializer writes provider configuration entries into a project root.
type Materializer struct {
	Root     string
	Resolver Resolver
}

// Plan resolves destination paths without touching disk, rejecting entries
// that escape the root. Used for dry runs and as the pre-flight check before
// Materialize writes anything.
func (m Materializer) Plan(entries []provider.ConfigEntry) ([]string, error) {
	rels := make([]string, 0, len(entries))
	for _, entry := range entries {
		rel, err := m.destination(entry)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// Materialize resolves and writes every entry. Path escapes abort before any
// write; after that, failures are isolated per entry so one bad source does
// not block the rest, and every successful write is reported for rollback.
func (m Materializer) Materialize(ctx context.Context, entries []provider.ConfigEntry) (Result, error) {
	rels, err := m.Plan(entries)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i, entry := range entries {
		rel := rels[i]
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, Failure{Path: rel, Err: err})
			continue
		}

		content, err := m.Resolver.Resolve(ctx, entry.SourceFrom)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Path: rel, Err: err})
			continue
		}

		write, err := m.writeOne(rel, content)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Path: rel, Err: err})
			continue
		}
		res.Writes = append(res.Writes, write)
	}
	return res, nil
}

func (m Materializer) writeOne(rel string, content []byte) (Write, error) {
	dest := filepath.Join(m.Root, filepath.FromSlash(rel))

	write := Write{Path: rel}
	existing, err := os.ReadFile(dest)
	switch {
	case err == nil:
		write.Existed = true
		write.Snapshot = existing
	case errors.Is(err, os.ErrNotExist):
	default:
		return Write{}, fmt.Errorf("snapshot existing file: %w", err)
	}

	if rel == vscodeSettingsRel {
		write.Merged = true
		if err := vscode.Merge(dest, content); err != nil {
			return Write{}, err
		}
		return write, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Write{}, fmt.Errorf("ensure destination dir: %w", err)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return Write{}, fmt.Errorf("write file: %w", err)
	}
	return write, nil
}

// Undo reverses a recorded write: overwritten files get their snapshot back,
// created files are deleted (their empty parent dirs are left in place).
func (m Materializer) Undo(write Write) error {
	dest := filepath.Join(m.Root, filepath.FromSlash(write.Path))

	if write.Existed {
		if err := os.WriteFile(dest, write.Snapshot, 0o644); err != nil {
			return fmt.Errorf("restore %s: %w", write.Path, err)
		}
		return nil
	}

	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", write.Path, err)
	}
	return nil
}

// destination joins file_location and file_name under the root and rejects
// anything that normalizes outside it.
func (m Materializer) destination(entry provider.ConfigEntry) (string, error) {
	joined := filepath.Join(m.Root, filepath.FromSlash(entry.FileLocation), filepath.FromSlash(entry.FileName))

	rel, err := filepath.Rel(m.Root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", PathEscapeError{Location: entry.FileLocation, Name: entry.FileName}
	}
	return filepath.ToSlash(rel), nil
}

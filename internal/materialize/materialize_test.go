package materialize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"amaris/internal/vscode"
	"amaris/pkg/provider"
)

// fakeResolver serves content from a map and fails every other locator.
type fakeResolver struct {
	content map[string][]byte
}

func (r fakeResolver) Resolve(_ context.Context, locator string) ([]byte, error) {
	data, ok := r.content[locator]
	if !ok {
		return nil, SourceUnavailableError{Locator: locator, Reason: "not found"}
	}
	return data, nil
}

func TestMaterializeWritesNewFile(t *testing.T) {
	root := t.TempDir()
	mat := Materializer{
		Root:     root,
		Resolver: fakeResolver{content: map[string][]byte{"biome.json": []byte(`{"linter": {}}`)}},
	}

	res, err := mat.Materialize(context.Background(), []provider.ConfigEntry{
		{FileLocation: ".", FileName: "biome.json", SourceFrom: "biome.json"},
	})
	if err != nil {
		t.Fatalf("Materialize() = %v", err)
	}
	if res.Failed() {
		t.Fatalf("failures: %v", res.Err())
	}
	if len(res.Writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(res.Writes))
	}

	write := res.Writes[0]
	if write.Path != "biome.json" || write.Existed || write.Snapshot != nil {
		t.Fatalf("write = %+v", write)
	}

	data, err := os.ReadFile(filepath.Join(root, "biome.json"))
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != `{"linter": {}}` {
		t.Fatalf("destination = %s", data)
	}
}

func TestMaterializeSnapshotsExistingFile(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "biome.json")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	mat := Materializer{
		Root:     root,
		Resolver: fakeResolver{content: map[string][]byte{"biome.json": []byte("new")}},
	}
	res, err := mat.Materialize(context.Background(), []provider.ConfigEntry{
		{FileLocation: ".", FileName: "biome.json", SourceFrom: "biome.json"},
	})
	if err != nil {
		t.Fatalf("Materialize() = %v", err)
	}

	write := res.Writes[0]
	if !write.Existed || string(write.Snapshot) != "old" {
		t.Fatalf("write = %+v, want snapshot of prior content", write)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "new" {
		t.Fatalf("destination = %s, want new", data)
	}
}

func TestMaterializeCreatesNestedDirectories(t *testing.T) {
	root := t.TempDir()
	mat := Materializer{
		Root:     root,
		Resolver: fakeResolver{content: map[string][]byte{"tsconfig.json": []byte("{}")}},
	}

	res, err := mat.Materialize(context.Background(), []provider.ConfigEntry{
		{FileLocation: "config/ts", FileName: "tsconfig.json", SourceFrom: "tsconfig.json"},
	})
	if err != nil || res.Failed() {
		t.Fatalf("Materialize() = %v, %v", err, res.Err())
	}
	if res.Writes[0].Path != "config/ts/tsconfig.json" {
		t.Fatalf("Path = %q", res.Writes[0].Path)
	}
	if _, err := os.Stat(filepath.Join(root, "config", "ts", "tsconfig.json")); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestPlanRejectsPathEscape(t *testing.T) {
	mat := Materializer{Root: t.TempDir(), Resolver: fakeResolver{}}

	tests := []provider.ConfigEntry{
		{FileLocation: "..", FileName: "evil.json", SourceFrom: "x"},
		{FileLocation: "a/../../..", FileName: "evil.json", SourceFrom: "x"},
	}
	for _, entry := range tests {
		_, err := mat.Plan([]provider.ConfigEntry{entry})
		var escape PathEscapeError
		if !errors.As(err, &escape) {
			t.Fatalf("Plan(%+v) = %v, want PathEscapeError", entry, err)
		}
	}
}

func TestMaterializeEscapeAbortsBeforeAnyWrite(t *testing.T) {
	root := t.TempDir()
	mat := Materializer{
		Root:     root,
		Resolver: fakeResolver{content: map[string][]byte{"ok.json": []byte("{}")}},
	}

	_, err := mat.Materialize(context.Background(), []provider.ConfigEntry{
		{FileLocation: ".", FileName: "ok.json", SourceFrom: "ok.json"},
		{FileLocation: "../outside", FileName: "evil.json", SourceFrom: "ok.json"},
	})
	if err == nil {
		t.Fatal("Materialize() = nil, want path escape")
	}
	if _, statErr := os.Stat(filepath.Join(root, "ok.json")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("ok.json written despite aborted pass")
	}
}

func TestMaterializeIsolatesSourceFailures(t *testing.T) {
	root := t.TempDir()
	mat := Materializer{
		Root:     root,
		Resolver: fakeResolver{content: map[string][]byte{"good.json": []byte("{}")}},
	}

	res, err := mat.Materialize(context.Background(), []provider.ConfigEntry{
		{FileLocation: ".", FileName: "missing.json", SourceFrom: "missing.json"},
		{FileLocation: ".", FileName: "good.json", SourceFrom: "good.json"},
	})
	if err != nil {
		t.Fatalf("Materialize() = %v", err)
	}

	if len(res.Failures) != 1 || res.Failures[0].Path != "missing.json" {
		t.Fatalf("failures = %+v, want one for missing.json", res.Failures)
	}
	if len(res.Writes) != 1 || res.Writes[0].Path != "good.json" {
		t.Fatalf("writes = %+v, want good.json still written", res.Writes)
	}
}

func TestMaterializeMergesVSCodeSettings(t *testing.T) {
	root := t.TempDir()
	settingsPath := filepath.Join(root, ".vscode", "settings.json")
	if err := vscode.Write(settingsPath, map[string]any{"editor.tabSize": float64(4)}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	mat := Materializer{
		Root: root,
		Resolver: fakeResolver{content: map[string][]byte{
			"settings.json": []byte(`{"editor.defaultFormatter": "biomejs.biome"}`),
		}},
	}
	res, err := mat.Materialize(context.Background(), []provider.ConfigEntry{
		{FileLocation: ".vscode", FileName: "settings.json", SourceFrom: "settings.json"},
	})
	if err != nil || res.Failed() {
		t.Fatalf("Materialize() = %v, %v", err, res.Err())
	}
	if !res.Writes[0].Merged {
		t.Fatalf("write = %+v, want Merged", res.Writes[0])
	}

	settings, err := vscode.Read(settingsPath)
	if err != nil {
		t.Fatalf("Read settings: %v", err)
	}
	if settings["editor.tabSize"] != float64(4) || settings["editor.defaultFormatter"] != "biomejs.biome" {
		t.Fatalf("settings = %v, want merged", settings)
	}
}

func TestUndoRestoresSnapshotAndDeletesCreated(t *testing.T) {
	root := t.TempDir()
	mat := Materializer{Root: root}

	overwritten := filepath.Join(root, "biome.json")
	if err := os.WriteFile(overwritten, []byte("new"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := mat.Undo(Write{Path: "biome.json", Existed: true, Snapshot: []byte("old")}); err != nil {
		t.Fatalf("Undo() = %v", err)
	}
	data, _ := os.ReadFile(overwritten)
	if string(data) != "old" {
		t.Fatalf("restored = %s, want old", data)
	}

	created := filepath.Join(root, "tsconfig.json")
	if err := os.WriteFile(created, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := mat.Undo(Write{Path: "tsconfig.json"}); err != nil {
		t.Fatalf("Undo() = %v", err)
	}
	if _, err := os.Stat(created); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("created file still present after undo")
	}

	// Undoing a create twice is a no-op.
	if err := mat.Undo(Write{Path: "tsconfig.json"}); err != nil {
		t.Fatalf("second Undo() = %v", err)
	}
}

func TestSourceResolverReadsTemplateDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "biome.json"), []byte(`{"linter": {}}`), 0o644); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	r := SourceResolver{TemplateDir: dir}
	data, err := r.Resolve(context.Background(), "biome.json")
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if string(data) != `{"linter": {}}` {
		t.Fatalf("Resolve() = %s", data)
	}

	_, err = r.Resolve(context.Background(), "missing.json")
	var unavailable SourceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Resolve(missing) = %v, want SourceUnavailableError", err)
	}
	if unavailable.Locator != "missing.json" {
		t.Fatalf("Locator = %q", unavailable.Locator)
	}
}

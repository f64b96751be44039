package vscode

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadMissingFileReturnsEmptySettings(t *testing.T) {
	settings, err := Read(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if len(settings) != 0 {
		t.Fatalf("Read() = %v, want empty", settings)
	}
}

func TestMergeCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vscode", "settings.json")

	incoming := []byte(`{"editor.defaultFormatter": "biomejs.biome"}`)
	if err := Merge(path, incoming); err != nil {
		t.Fatalf("Merge() = %v", err)
	}

	settings, err := Read(path)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if settings["editor.defaultFormatter"] != "biomejs.biome" {
		t.Fatalf("settings = %v", settings)
	}
}

func TestMergePreservesUnrelatedKeysAndOverridesConflicts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	existing := map[string]any{
		"editor.tabSize":          float64(4),
		"editor.defaultFormatter": "esbenp.prettier-vscode",
		"[typescript]": map[string]any{
			"editor.formatOnSave": true,
		},
	}
	if err := Write(path, existing); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	incoming := []byte(`{
  "editor.defaultFormatter": "biomejs.biome",
  "[typescript]": {
    "editor.codeActionsOnSave": {
      "source.organizeImports.biome": "explicit"
    }
  }
}`)
	if err := Merge(path, incoming); err != nil {
		t.Fatalf("Merge() = %v", err)
	}

	settings, err := Read(path)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}

	if settings["editor.tabSize"] != float64(4) {
		t.Fatalf("editor.tabSize = %v, want untouched", settings["editor.tabSize"])
	}
	if settings["editor.defaultFormatter"] != "biomejs.biome" {
		t.Fatalf("editor.defaultFormatter = %v, want incoming value", settings["editor.defaultFormatter"])
	}

	ts, ok := settings["[typescript]"].(map[string]any)
	if !ok {
		t.Fatalf("[typescript] = %T, want nested object", settings["[typescript]"])
	}
	want := map[string]any{
		"editor.formatOnSave": true,
		"editor.codeActionsOnSave": map[string]any{
			"source.organizeImports.biome": "explicit",
		},
	}
	if !reflect.DeepEqual(ts, want) {
		t.Fatalf("[typescript] = %v, want %v", ts, want)
	}
}

func TestMergeRejectsMalformedIncoming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := Write(path, map[string]any{"editor.tabSize": float64(2)}); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	if err := Merge(path, []byte("{not json")); err == nil {
		t.Fatal("Merge() = nil, want parse error")
	}

	// The existing file is left alone.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	settings, err := Read(path)
	if err != nil {
		t.Fatalf("Read() = %v (%s)", err, data)
	}
	if settings["editor.tabSize"] != float64(2) {
		t.Fatalf("settings = %v, want untouched", settings)
	}
}

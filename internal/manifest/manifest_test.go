package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadMissingFileReturnsEmptyManifest(t *testing.T) {
	man, err := Read(filepath.Join(t.TempDir(), "package.json"))
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if names := man.ScriptNames(); len(names) != 0 {
		t.Fatalf("ScriptNames() = %v, want empty", names)
	}
}

func TestScriptRoundTrip(t *testing.T) {
	man := New()
	man.SetScript("lint", "biome lint .")

	got, ok := man.Script("lint")
	if !ok || got != "biome lint ." {
		t.Fatalf("Script(lint) = %q, %v", got, ok)
	}

	man.DeleteScript("lint")
	if _, ok := man.Script("lint"); ok {
		t.Fatal("Script(lint) still present after delete")
	}
}

func TestWritePreservesKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	original := `{
  "name": "demo",
  "version": "1.0.0",
  "scripts": {
    "test": "bun test"
  },
  "devDependencies": {
    "typescript": "^5.0.0"
  }
}
`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	man, err := Read(path)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	man.SetScript("lint", "biome lint .")
	if err := man.Write(path); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	out := string(data)

	// Untouched top-level keys keep their positions.
	nameIdx := strings.Index(out, `"name"`)
	versionIdx := strings.Index(out, `"version"`)
	scriptsIdx := strings.Index(out, `"scripts"`)
	depsIdx := strings.Index(out, `"devDependencies"`)
	if !(nameIdx < versionIdx && versionIdx < scriptsIdx && scriptsIdx < depsIdx) {
		t.Fatalf("key order changed:\n%s", out)
	}

	// Existing script stays ahead of the inserted one.
	testIdx := strings.Index(out, `"test"`)
	lintIdx := strings.Index(out, `"lint"`)
	if !(testIdx < lintIdx) {
		t.Fatalf("script order changed:\n%s", out)
	}
}

func TestWriteIsStableWithoutChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")

	man := New()
	man.SetScript("test", "bun test")
	if err := man.Write(path); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	again, err := Read(path)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if err := again.Write(path); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	if string(first) != string(second) {
		t.Fatalf("read-write cycle changed bytes:\n%s\nvs\n%s", first, second)
	}
}

func TestPinnedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	content := `{
  "dependencies": {
    "react": "^18.0.0"
  },
  "devDependencies": {
    "@biomejs/biome": "1.9.4"
  }
}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	man, err := Read(path)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}

	if version, ok := man.PinnedVersion("@biomejs/biome"); !ok || version != "1.9.4" {
		t.Fatalf("PinnedVersion(@biomejs/biome) = %q, %v", version, ok)
	}
	if version, ok := man.PinnedVersion("react"); !ok || version != "^18.0.0" {
		t.Fatalf("PinnedVersion(react) = %q, %v", version, ok)
	}
	if _, ok := man.PinnedVersion("eslint"); ok {
		t.Fatal("PinnedVersion(eslint) = true, want false")
	}
}

package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectPaths captures canonical locations inside a target project.
type ProjectPaths struct {
	Root           string
	ManifestFile   string
	ConfigFile     string
	StateDir       string
	LedgersDir     string
	LogsDir        string
	LockFile       string
	VSCodeSettings string
}

// HomePaths captures the user-level amaris directories.
type HomePaths struct {
	Root         string
	ProvidersDir string
	ConfigsDir   string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return ForRoot(root), nil
}

// ForRoot builds the canonical project layout rooted at the given directory.
func ForRoot(root string) ProjectPaths {
	stateDir := filepath.Join(root, ".amaris")
	return ProjectPaths{
		Root:           root,
		ManifestFile:   filepath.Join(root, "package.json"),
		ConfigFile:     filepath.Join(root, "amaris.yaml"),
		StateDir:       stateDir,
		LedgersDir:     filepath.Join(stateDir, "ledgers"),
		LogsDir:        filepath.Join(stateDir, "logs"),
		LockFile:       filepath.Join(stateDir, "lock"),
		VSCodeSettings: filepath.Join(root, ".vscode", "settings.json"),
	}
}

// EnsureStateDirs creates the hidden .amaris hierarchy.
func (p ProjectPaths) EnsureStateDirs() error {
	dirs := []string{p.StateDir, p.LedgersDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LedgerFile returns the ledger path for a provider name.
func (p ProjectPaths) LedgerFile(provider string) string {
	return filepath.Join(p.LedgersDir, provider+".json")
}

// Home returns the user-level amaris directories (~/.amaris), creating them
// if they do not exist.
func Home() (HomePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return HomePaths{}, fmt.Errorf("detect user home: %w", err)
	}
	return HomeAt(filepath.Join(home, ".amaris"))
}

// HomeAt builds and creates the amaris home layout at an explicit root.
// Tests use this to isolate the home under a temporary directory.
func HomeAt(root string) (HomePaths, error) {
	hp := HomePaths{
		Root:         root,
		ProvidersDir: filepath.Join(root, "providers"),
		ConfigsDir:   filepath.Join(root, "configs"),
	}
	for _, dir := range []string{hp.Root, hp.ProvidersDir, hp.ConfigsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return HomePaths{}, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return hp, nil
}

// ProviderConfigDir returns the template directory for a provider inside the
// configs dir (configs/<provider>/...).
func (h HomePaths) ProviderConfigDir(provider string) string {
	return filepath.Join(h.ConfigsDir, provider)
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

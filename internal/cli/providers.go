package cli

import (
	"path/filepath"

	"amaris/internal/config"
	"amaris/internal/paths"
	"amaris/pkg/provider"
)

// loadRegistry reads every provider document visible to the current project:
// the amaris home providers dir, or the project's providers_dir override.
func loadRegistry() (*provider.Registry, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}

	dir, _, err := providerDirs(pp, cfg)
	if err != nil {
		return nil, err
	}
	return providerRegistry(dir)
}

// providerRegistry loads every provider document from one directory.
func providerRegistry(dir string) (*provider.Registry, error) {
	return provider.LoadAll(dir)
}

// providerDirs resolves the providers and configs directories for a project,
// applying amaris.yaml overrides relative to the project root.
func providerDirs(pp paths.ProjectPaths, cfg config.Config) (providersDir, configsDir string, err error) {
	home, err := resolveHome()
	if err != nil {
		return "", "", err
	}

	providersDir = home.ProvidersDir
	configsDir = home.ConfigsDir

	if cfg.ProvidersDir != "" {
		providersDir = resolveProjectPath(pp.Root, cfg.ProvidersDir)
	}
	if cfg.ConfigsDir != "" {
		configsDir = resolveProjectPath(pp.Root, cfg.ConfigsDir)
	}
	return providersDir, configsDir, nil
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

package installer

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Installer drives one package manager. Implementations install packages as
// dev dependencies, matching how tooling providers are normally added.
type Installer interface {
	// Name is the package_manager value this installer serves.
	Name() string
	// Install adds packages to the project at dir.
	Install(ctx context.Context, dir string, packages []string) error
	// Remove uninstalls packages from the project at dir.
	Remove(ctx context.Context, dir string, packages []string) error
}

// Bun installs packages with the bun CLI.
type Bun struct {
	Runner Runner
}

func (b Bun) Name() string { return "bun" }

func (b Bun) Install(ctx context.Context, dir string, packages []string) error {
	for _, pkg := range packages {
		if err := b.run(ctx, dir, "add", "-d", pkg); err != nil {
			return fmt.Errorf("install %s: %w", pkg, err)
		}
	}
	return nil
}

func (b Bun) Remove(ctx context.Context, dir string, packages []string) error {
	for _, pkg := range packages {
		if err := b.run(ctx, dir, "remove", pkg); err != nil {
			return fmt.Errorf("remove %s: %w", pkg, err)
		}
	}
	return nil
}

func (b Bun) run(ctx context.Context, dir string, args ...string) error {
	runner := b.Runner
	if runner == nil {
		runner = CmdRunner{}
	}
	res, err := runner.Run(ctx, "bun", args, RunOptions{Dir: dir})
	if err != nil {
		msg := strings.TrimSpace(string(res.Stderr))
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

var _ Installer = Bun{}

// For returns the installer registered for a package manager name. Adding a
// manager means registering a new Installer here, not changing the schema.
func For(name string, runner Runner) (Installer, error) {
	switch name {
	case "bun":
		return Bun{Runner: runner}, nil
	default:
		return nil, fmt.Errorf("unsupported package manager %q (supported: %s)", name, strings.Join(Supported(), ", "))
	}
}

// Supported lists registered package manager names.
func Supported() []string {
	names := []string{"bun"}
	sort.Strings(names)
	return names
}

// Detect reports whether a package manager binary is reachable on PATH, and
// where. Doctor uses this as the prerequisite probe before any apply.
func Detect(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"amaris/internal/installer"
	"amaris/internal/logx"
	"amaris/internal/manifest"
	"amaris/internal/materialize"
	"amaris/internal/paths"
	"amaris/pkg/provider"
)

// State names one step of a provider application.
type State string

const (
	StateValidating          State = "validating"
	StatePreparing           State = "preparing"
	StateInstalling          State = "installing"
	StateMerging             State = "merging"
	StateMaterializing       State = "materializing"
	StateCommitted           State = "committed"
	StatePlanned             State = "planned"
	StateRollingBack         State = "rolling-back"
	StateFailed              State = "failed"
	StatePartiallyRolledBack State = "partially-rolled-back"
)

// Options configures one Apply invocation.
type Options struct {
	// OverwriteScripts lets the merge replace script keys that already hold
	// a different command; the prior value is captured in the ledger.
	OverwriteScripts bool
	// DryRun computes the full plan without side effects.
	DryRun bool
	// Timeout bounds the whole operation. Zero means no bound beyond ctx.
	Timeout time.Duration
}

// Plan previews what an apply would do.
type Plan struct {
	Packages []string                `json:"packages,omitempty"`
	Scripts  []manifest.ScriptChange `json:"scripts,omitempty"`
	Files    []string                `json:"files,omitempty"`
}

// ApplyResult reports the outcome of one provider application.
type ApplyResult struct {
	Provider          string   `json:"provider"`
	State             State    `json:"state"`
	FailedStep        State    `json:"failed_step,omitempty"`
	Plan              Plan     `json:"plan"`
	PackagesInstalled []string `json:"packages_installed,omitempty"`
	RolledBack        []string `json:"rolled_back,omitempty"`
	ManualCleanup     []string `json:"manual_cleanup,omitempty"`
}

// Engine applies and removes providers against one project root. The zero
// value is not usable; construct with New.
type Engine struct {
	Paths  paths.ProjectPaths
	Home   paths.HomePaths
	Runner installer.Runner
	Log    *log.Logger

	// InstallerFor and ResolverFor exist so tests can substitute fakes.
	InstallerFor func(manager string, runner installer.Runner) (installer.Installer, error)
	ResolverFor  func(providerName string) materialize.Resolver
}

// New builds an engine with the default collaborators: the real package
// manager runner and the home configs dir as the template source.
func New(pp paths.ProjectPaths, home paths.HomePaths) *Engine {
	return &Engine{
		Paths:        pp,
		Home:         home,
		Runner:       installer.CmdRunner{},
		Log:          logx.Discard(),
		InstallerFor: installer.For,
		ResolverFor: func(name string) materialize.Resolver {
			return materialize.SourceResolver{TemplateDir: home.ProviderConfigDir(name)}
		},
	}
}

// Apply runs one provider through the full state machine:
// validating -> installing -> merging -> materializing -> committed, with
// rollback in strict reverse order on any failure after side effects begin.
func (e *Engine) Apply(ctx context.Context, doc provider.Document, opts Options) (ApplyResult, error) {
	res := ApplyResult{Provider: doc.Name, State: StateValidating}

	if err := doc.Validate(); err != nil {
		res.State = StateFailed
		res.FailedStep = StateValidating
		return res, err
	}

	inst, err := e.InstallerFor(doc.PackageManager, e.Runner)
	if err != nil {
		res.State = StateFailed
		res.FailedStep = StateValidating
		return res, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	mat := materialize.Materializer{Root: e.Paths.Root, Resolver: e.ResolverFor(doc.Name)}

	// Plan before any side effect: a path escape or manifest parse error is
	// terminal with nothing to undo.
	files, err := mat.Plan(doc.Configuration)
	if err != nil {
		res.State = StateFailed
		res.FailedStep = StateValidating
		return res, err
	}

	man, err := manifest.Read(e.Paths.ManifestFile)
	if err != nil {
		res.State = StateFailed
		res.FailedStep = StatePreparing
		return res, err
	}
	toInstall := man.MergePackages(doc.Packages)

	if opts.DryRun {
		changes, err := man.MergeScripts(doc.Scripts, opts.OverwriteScripts)
		if err != nil {
			res.State = StateFailed
			res.FailedStep = StateMerging
			return res, err
		}
		res.Plan = Plan{Packages: toInstall, Scripts: changes, Files: files}
		res.State = StatePlanned
		return res, nil
	}
	res.Plan = Plan{Packages: toInstall, Files: files}

	// Preparing covers everything between a clean validation and the first
	// side effect, so a lock conflict is not reported as a validation failure.
	res.State = StatePreparing
	if err := e.Paths.EnsureStateDirs(); err != nil {
		res.State = StateFailed
		res.FailedStep = StatePreparing
		return res, err
	}
	unlock, err := acquireLock(e.Paths.LockFile)
	if err != nil {
		res.State = StateFailed
		res.FailedStep = StatePreparing
		return res, err
	}
	defer unlock()

	e.Log.Printf("apply provider=%s manager=%s packages=%d files=%d scripts=%d",
		doc.Name, doc.PackageManager, len(toInstall), len(doc.Configuration), len(doc.Scripts))

	// Installing. The least reversible step runs first; on later failures
	// installed packages are reported, never auto-removed.
	res.State = StateInstalling
	if err := ctx.Err(); err != nil {
		return res, e.rollback(&res, mat, nil, manifestRestore{}, StateInstalling, err)
	}
	if len(toInstall) > 0 {
		if err := inst.Install(ctx, e.Paths.Root, toInstall); err != nil {
			res.ManualCleanup = append(res.ManualCleanup,
				fmt.Sprintf("packages may be partially installed: %v", toInstall))
			return res, e.rollback(&res, mat, nil, manifestRestore{}, StateInstalling, err)
		}
		res.PackagesInstalled = toInstall
	}

	// Merging. Re-read the manifest: the package manager may have rewritten
	// it while installing.
	res.State = StateMerging
	if err := ctx.Err(); err != nil {
		return res, e.rollback(&res, mat, nil, manifestRestore{}, StateMerging, err)
	}
	man, err = manifest.Read(e.Paths.ManifestFile)
	if err != nil {
		return res, e.rollback(&res, mat, nil, manifestRestore{}, StateMerging, err)
	}
	restore, err := snapshotManifest(e.Paths.ManifestFile)
	if err != nil {
		return res, e.rollback(&res, mat, nil, manifestRestore{}, StateMerging, err)
	}

	changes, err := man.MergeScripts(doc.Scripts, opts.OverwriteScripts)
	if err != nil {
		return res, e.rollback(&res, mat, nil, manifestRestore{}, StateMerging, err)
	}
	res.Plan.Scripts = changes
	if len(changes) > 0 {
		if err := man.Write(e.Paths.ManifestFile); err != nil {
			return res, e.rollback(&res, mat, nil, manifestRestore{}, StateMerging, err)
		}
		restore.dirty = true
	}

	// Materializing.
	res.State = StateMaterializing
	if err := ctx.Err(); err != nil {
		return res, e.rollback(&res, mat, nil, restore, StateMaterializing, err)
	}
	matRes, err := mat.Materialize(ctx, doc.Configuration)
	if err != nil {
		return res, e.rollback(&res, mat, matRes.Writes, restore, StateMaterializing, err)
	}
	if matRes.Failed() {
		return res, e.rollback(&res, mat, matRes.Writes, restore, StateMaterializing, matRes.Err())
	}

	ledger := Ledger{
		Provider:       doc.Name,
		PackageManager: doc.PackageManager,
		AppliedAt:      time.Now().UTC(),
		Packages:       toInstall,
		Scripts:        changes,
		Files:          matRes.Writes,
	}
	if err := SaveLedger(e.Paths, ledger); err != nil {
		return res, e.rollback(&res, mat, matRes.Writes, restore, StateMaterializing, err)
	}

	res.State = StateCommitted
	e.Log.Printf("apply committed provider=%s", doc.Name)
	return res, nil
}

// manifestRestore captures the manifest bytes right before the merge wrote
// it, so rollback can put back exactly what the install step left behind.
type manifestRestore struct {
	existed bool
	data    []byte
	dirty   bool
}

func snapshotManifest(path string) (manifestRestore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return manifestRestore{}, nil
		}
		return manifestRestore{}, fmt.Errorf("snapshot manifest: %w", err)
	}
	return manifestRestore{existed: true, data: data}, nil
}

// rollback undoes forward progress in strict reverse order: files first,
// then the manifest merge. Package installs are reported, not reverted.
func (e *Engine) rollback(res *ApplyResult, mat materialize.Materializer, writes []materialize.Write, restore manifestRestore, step State, cause error) error {
	res.FailedStep = step
	res.State = StateRollingBack
	e.Log.Printf("rollback provider=%s step=%s cause=%v", res.Provider, step, cause)

	var leftover []string

	for i := len(writes) - 1; i >= 0; i-- {
		if err := mat.Undo(writes[i]); err != nil {
			e.Log.Printf("rollback leftover file=%s err=%v", writes[i].Path, err)
			leftover = append(leftover, writes[i].Path)
			continue
		}
		res.RolledBack = append(res.RolledBack, writes[i].Path)
	}

	if restore.dirty {
		var err error
		if restore.existed {
			err = os.WriteFile(e.Paths.ManifestFile, restore.data, 0o644)
		} else {
			err = os.Remove(e.Paths.ManifestFile)
			if errors.Is(err, os.ErrNotExist) {
				err = nil
			}
		}
		if err != nil {
			e.Log.Printf("rollback leftover manifest err=%v", err)
			leftover = append(leftover, "package.json")
		} else {
			res.RolledBack = append(res.RolledBack, "package.json")
		}
	}

	if len(res.PackagesInstalled) > 0 {
		res.ManualCleanup = append(res.ManualCleanup,
			fmt.Sprintf("packages were installed and not removed: %v", res.PackagesInstalled))
	}

	if len(leftover) > 0 {
		res.State = StatePartiallyRolledBack
		return PartialRollbackError{Cause: StepError{Step: step, Err: cause}, Leftover: leftover}
	}

	res.State = StateFailed
	return StepError{Step: step, Err: cause}
}

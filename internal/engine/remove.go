package engine

import (
	"context"
	"fmt"
	"time"

	"amaris/internal/manifest"
	"amaris/internal/materialize"
)

// RemoveStatus classifies the outcome of a Remove call.
type RemoveStatus string

const (
	StatusRemoved      RemoveStatus = "removed"
	StatusNotInstalled RemoveStatus = "not-installed"
	StatusPartial      RemoveStatus = "partial"
)

// RemoveOptions configures one Remove invocation.
type RemoveOptions struct {
	// UninstallPackages also removes the recorded packages through the
	// package manager. Off by default: package installs are otherwise left
	// alone, matching apply's rollback policy.
	UninstallPackages bool
	Timeout           time.Duration
}

// RemoveResult reports what a Remove call reversed.
type RemoveResult struct {
	Provider        string       `json:"provider"`
	Status          RemoveStatus `json:"status"`
	FilesDeleted    []string     `json:"files_deleted,omitempty"`
	FilesRestored   []string     `json:"files_restored,omitempty"`
	ScriptsReverted []string     `json:"scripts_reverted,omitempty"`
	ScriptsSkipped  []string     `json:"scripts_skipped,omitempty"`
	PackagesRemoved []string     `json:"packages_removed,omitempty"`
	ManualCleanup   []string     `json:"manual_cleanup,omitempty"`
}

// Remove reverses a previously applied provider from its ledger: created
// files are deleted, overwritten files get their snapshots back, script keys
// are reverted only while their value still matches the record, and the
// ledger is deleted. A provider with no ledger is a no-op, not an error.
func (e *Engine) Remove(ctx context.Context, name string, opts RemoveOptions) (RemoveResult, error) {
	res := RemoveResult{Provider: name, Status: StatusNotInstalled}

	if _, ok, err := LoadLedger(e.Paths, name); err != nil {
		return res, err
	} else if !ok {
		return res, nil
	}

	unlock, err := acquireLock(e.Paths.LockFile)
	if err != nil {
		return res, err
	}
	defer unlock()

	ledger, ok, err := LoadLedger(e.Paths, name)
	if err != nil {
		return res, err
	}
	if !ok {
		return res, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	e.Log.Printf("remove provider=%s files=%d scripts=%d", name, len(ledger.Files), len(ledger.Scripts))

	var leftover []string
	mat := materialize.Materializer{Root: e.Paths.Root}

	for i := len(ledger.Files) - 1; i >= 0; i-- {
		write := ledger.Files[i]
		if err := mat.Undo(write); err != nil {
			e.Log.Printf("remove leftover file=%s err=%v", write.Path, err)
			leftover = append(leftover, write.Path)
			continue
		}
		if write.Existed {
			res.FilesRestored = append(res.FilesRestored, write.Path)
		} else {
			res.FilesDeleted = append(res.FilesDeleted, write.Path)
		}
	}

	if len(ledger.Scripts) > 0 {
		man, err := manifest.Read(e.Paths.ManifestFile)
		if err != nil {
			leftover = append(leftover, "package.json")
		} else {
			reverted := false
			for i := len(ledger.Scripts) - 1; i >= 0; i-- {
				change := ledger.Scripts[i]
				if man.RevertScript(change) {
					reverted = true
					res.ScriptsReverted = append(res.ScriptsReverted, change.Name)
				} else {
					// The user changed this script after install; leave it.
					res.ScriptsSkipped = append(res.ScriptsSkipped, change.Name)
				}
			}
			if reverted {
				if err := man.Write(e.Paths.ManifestFile); err != nil {
					leftover = append(leftover, "package.json")
				}
			}
		}
	}

	if opts.UninstallPackages && len(ledger.Packages) > 0 {
		inst, err := e.InstallerFor(ledger.PackageManager, e.Runner)
		if err == nil {
			err = inst.Remove(ctx, e.Paths.Root, ledger.Packages)
		}
		if err != nil {
			res.ManualCleanup = append(res.ManualCleanup,
				fmt.Sprintf("packages not removed: %v (%v)", ledger.Packages, err))
		} else {
			res.PackagesRemoved = ledger.Packages
		}
	} else if len(ledger.Packages) > 0 {
		res.ManualCleanup = append(res.ManualCleanup,
			fmt.Sprintf("packages left installed: %v", ledger.Packages))
	}

	if len(leftover) > 0 {
		// Keep the ledger so a later remove can retry what is left.
		res.Status = StatusPartial
		return res, PartialRollbackError{
			Cause:    fmt.Errorf("remove %s", name),
			Leftover: leftover,
		}
	}

	if err := DeleteLedger(e.Paths, name); err != nil {
		res.Status = StatusPartial
		return res, err
	}

	res.Status = StatusRemoved
	e.Log.Printf("remove done provider=%s", name)
	return res, nil
}

package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"amaris/internal/manifest"
	"amaris/internal/materialize"
	"amaris/internal/paths"
)

// Ledger is the durable record of exactly what one applied provider changed.
// Its presence under .amaris/ledgers is the evidence that the provider is
// installed; it is the sole source of truth for reversal.
type Ledger struct {
	Provider       string                  `json:"provider"`
	PackageManager string                  `json:"package_manager"`
	AppliedAt      time.Time               `json:"applied_at"`
	Packages       []string                `json:"packages,omitempty"`
	Scripts        []manifest.ScriptChange `json:"scripts,omitempty"`
	Files          []materialize.Write     `json:"files,omitempty"`
}

// SaveLedger writes the ledger atomically to the project's ledgers dir.
func SaveLedger(pp paths.ProjectPaths, ledger Ledger) error {
	path := pp.LedgerFile(ledger.Provider)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure ledgers dir: %w", err)
	}

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// LoadLedger reads the ledger for a provider. The second return value
// reports whether one exists; absence means the provider is not installed.
func LoadLedger(pp paths.ProjectPaths, provider string) (Ledger, bool, error) {
	data, err := os.ReadFile(pp.LedgerFile(provider))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Ledger{}, false, nil
		}
		return Ledger{}, false, fmt.Errorf("read ledger: %w", err)
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return Ledger{}, false, fmt.Errorf("parse ledger: %w", err)
	}
	return ledger, true, nil
}

// DeleteLedger removes the ledger for a provider.
func DeleteLedger(pp paths.ProjectPaths, provider string) error {
	if err := os.Remove(pp.LedgerFile(provider)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete ledger: %w", err)
	}
	return nil
}

// ListLedgers returns every installed provider's ledger, sorted by name.
func ListLedgers(pp paths.ProjectPaths) ([]Ledger, error) {
	entries, err := os.ReadDir(pp.LedgersDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledgers dir: %w", err)
	}

	var ledgers []Ledger
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		ledger, ok, err := LoadLedger(pp, name)
		if err != nil || !ok {
			continue
		}
		ledgers = append(ledgers, ledger)
	}

	sort.Slice(ledgers, func(i, j int) bool { return ledgers[i].Provider < ledgers[j].Provider })
	return ledgers, nil
}

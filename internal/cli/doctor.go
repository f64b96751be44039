package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"amaris/internal/config"
	"amaris/internal/engine"
	"amaris/internal/installer"
	"amaris/internal/paths"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check project and amaris health",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	cfg, cfgErr := config.Load(pp.ConfigFile)

	var checks []healthCheck
	checks = append(checks, checkManager(cfg, cfgErr))
	checks = append(checks, checkManifest(pp))
	checks = append(checks, checkProviders(pp, cfg))
	checks = append(checks, checkInstalled(pp))

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkManager(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	manager := cfg.PackageManager
	path, found := installer.Detect(manager)
	if !found {
		return healthCheck{
			Name:    "Manager",
			Status:  "error",
			Summary: fmt.Sprintf("%s not found on PATH", manager),
		}
	}
	return healthCheck{Name: "Manager", Status: "ok", Summary: fmt.Sprintf("%s (%s)", manager, path)}
}

func checkManifest(pp paths.ProjectPaths) healthCheck {
	exists, err := paths.FileExists(pp.ManifestFile)
	if err != nil {
		return healthCheck{Name: "Manifest", Status: "error", Summary: err.Error()}
	}
	if !exists {
		return healthCheck{
			Name:    "Manifest",
			Status:  "warning",
			Summary: "package.json not found; apply will create it",
		}
	}
	return healthCheck{Name: "Manifest", Status: "ok", Summary: "package.json present"}
}

func checkProviders(pp paths.ProjectPaths, cfg config.Config) healthCheck {
	dir, _, err := providerDirs(pp, cfg)
	if err != nil {
		return healthCheck{Name: "Providers", Status: "error", Summary: err.Error()}
	}

	registry, err := providerRegistry(dir)
	if err != nil {
		return healthCheck{Name: "Providers", Status: "error", Summary: err.Error()}
	}

	n := len(registry.Names())
	if n == 0 {
		return healthCheck{
			Name:    "Providers",
			Status:  "warning",
			Summary: "no providers registered; run `amaris init`",
		}
	}
	return healthCheck{Name: "Providers", Status: "ok", Summary: fmt.Sprintf("%d registered", n)}
}

func checkInstalled(pp paths.ProjectPaths) healthCheck {
	ledgers, err := engine.ListLedgers(pp)
	if err != nil {
		return healthCheck{Name: "Installed", Status: "error", Summary: err.Error()}
	}
	if len(ledgers) == 0 {
		return healthCheck{Name: "Installed", Status: "ok", Summary: "no providers installed"}
	}

	var missing int
	for _, ledger := range ledgers {
		for _, write := range ledger.Files {
			path := filepath.Join(pp.Root, filepath.FromSlash(write.Path))
			if _, err := os.Stat(path); err != nil {
				missing++
			}
		}
	}

	summary := fmt.Sprintf("%d providers installed", len(ledgers))
	if missing > 0 {
		return healthCheck{
			Name:    "Installed",
			Status:  "warning",
			Summary: fmt.Sprintf("%s; %d recorded files missing on disk", summary, missing),
		}
	}
	return healthCheck{Name: "Installed", Status: "ok", Summary: summary}
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("PROJECT HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}

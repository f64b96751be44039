package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"amaris/internal/config"
	"amaris/internal/engine"
	"amaris/internal/logx"
	"amaris/internal/paths"
)

func newRemoveCmd() *cobra.Command {
	var (
		uninstallPackages bool
		timeout           time.Duration
	)

	cmd := &cobra.Command{
		Use:   "remove <provider>...",
		Short: "Reverse previously applied providers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, args, uninstallPackages, timeout)
		},
	}

	cmd.Flags().BoolVar(&uninstallPackages, "uninstall-packages", false, "Also remove the recorded packages through the package manager")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Bound for the whole operation (default from amaris.yaml)")

	return cmd
}

func runRemove(cmd *cobra.Command, args []string, uninstallPackages bool, timeout time.Duration) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}

	providersDir, configsDir, err := providerDirs(pp, cfg)
	if err != nil {
		return err
	}

	eng := engine.New(pp, paths.HomePaths{ProvidersDir: providersDir, ConfigsDir: configsDir})
	logger, closer, err := logx.New(pp)
	if err != nil {
		return err
	}
	defer closer.Close()
	eng.Log = logger

	opts := engine.RemoveOptions{
		UninstallPackages: uninstallPackages,
		Timeout:           timeout,
	}
	if opts.Timeout == 0 {
		opts.Timeout = cfg.InstallTimeout()
	}

	var results []engine.RemoveResult
	var removeErr error

	for _, name := range args {
		result, err := eng.Remove(cmd.Context(), name, opts)
		results = append(results, result)
		if err != nil {
			removeErr = err
			break
		}
	}

	if err := writeRemoveResults(cmd, results); err != nil {
		return err
	}
	return removeErr
}

func writeRemoveResults(cmd *cobra.Command, results []engine.RemoveResult) error {
	if outputJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)
	out := cmd.OutOrStdout()

	for _, res := range results {
		switch res.Status {
		case engine.StatusRemoved:
			fmt.Fprintf(out, "%s %s: %d files deleted, %d restored, %d scripts reverted\n",
				green.Render("removed"), res.Provider,
				len(res.FilesDeleted), len(res.FilesRestored), len(res.ScriptsReverted))
			for _, name := range res.ScriptsSkipped {
				fmt.Fprintf(out, "  script %s was edited after install; left untouched\n", name)
			}
		case engine.StatusNotInstalled:
			fmt.Fprintf(out, "%s %s is not installed\n", yellow.Render("skipped"), res.Provider)
		default:
			fmt.Fprintf(out, "%s %s removed partially\n", red.Render("partial"), res.Provider)
		}
		for _, note := range res.ManualCleanup {
			fmt.Fprintf(out, "  manual cleanup: %s\n", note)
		}
	}
	return nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"amaris/internal/config"
	"amaris/internal/engine"
	"amaris/internal/logx"
	"amaris/internal/manifest"
	"amaris/internal/materialize"
	"amaris/internal/paths"
	"amaris/internal/tui"
)

func newApplyCmd() *cobra.Command {
	var (
		overwriteScripts bool
		dryRun           bool
		timeout          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "apply [provider...]",
		Short: "Apply providers to the project",
		Long: "Apply installs each provider's packages, merges its scripts into " +
			"package.json, and materializes its configuration files. Without " +
			"arguments an interactive picker lists the registered providers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args, overwriteScripts, dryRun, timeout)
		},
	}

	cmd.Flags().BoolVar(&overwriteScripts, "overwrite-scripts", false, "Replace script keys that already hold a different command")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the plan without side effects")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Bound for the whole operation (default from amaris.yaml)")

	return cmd
}

func runApply(cmd *cobra.Command, args []string, overwriteScripts, dryRun bool, timeout time.Duration) error {
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
	registry, err := providerRegistry(providersDir)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		items := make([]tui.Item, 0, len(registry.List()))
		for _, doc := range registry.List() {
			items = append(items, tui.Item{Name: doc.Name, Description: doc.Description})
		}
		if len(items) == 0 {
			return errors.New("no providers registered; run `amaris init` first")
		}
		names, err = tui.Select(cmd.OutOrStdout(), "Select providers to apply", items)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.Println("Nothing selected.")
			return nil
		}
	}

	eng := engine.New(pp, paths.HomePaths{ProvidersDir: providersDir, ConfigsDir: configsDir})

	fetchClient := &http.Client{Timeout: cfg.FetchTimeout()}
	eng.ResolverFor = func(name string) materialize.Resolver {
		return materialize.SourceResolver{
			TemplateDir: filepath.Join(configsDir, name),
			Client:      fetchClient,
		}
	}

	if !dryRun {
		logger, closer, err := logx.New(pp)
		if err != nil {
			return err
		}
		defer closer.Close()
		eng.Log = logger
	}

	opts := engine.Options{
		OverwriteScripts: overwriteScripts || cfg.OverwriteScriptsEnabled(),
		DryRun:           dryRun,
		Timeout:          timeout,
	}
	if opts.Timeout == 0 {
		opts.Timeout = cfg.InstallTimeout()
	}

	var results []engine.ApplyResult
	var applyErr error

	for _, name := range names {
		doc, ok := registry.Get(name)
		if !ok {
			applyErr = fmt.Errorf("unknown provider %q (registered: %v)", name, registry.Names())
			break
		}

		result, err := eng.Apply(cmd.Context(), doc, opts)
		results = append(results, result)
		if err != nil {
			applyErr = err
			break
		}
	}

	if err := writeApplyResults(cmd, results); err != nil {
		return err
	}

	var conflict manifest.ConflictError
	if errors.As(applyErr, &conflict) {
		cmd.Printf("Hint: re-run with --overwrite-scripts to replace %q.\n", conflict.Key)
	}
	return applyErr
}

func writeApplyResults(cmd *cobra.Command, results []engine.ApplyResult) error {
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
		switch res.State {
		case engine.StateCommitted:
			fmt.Fprintf(out, "%s %s: %d packages, %d files, %d scripts\n",
				green.Render("applied"), res.Provider,
				len(res.PackagesInstalled), len(res.Plan.Files), len(res.Plan.Scripts))
		case engine.StatePlanned:
			fmt.Fprintf(out, "%s %s\n", yellow.Render("plan"), res.Provider)
			for _, pkg := range res.Plan.Packages {
				fmt.Fprintf(out, "  install %s\n", pkg)
			}
			for _, change := range res.Plan.Scripts {
				if change.Existed {
					fmt.Fprintf(out, "  script  %s: %q -> %q\n", change.Name, change.Prior, change.Command)
				} else {
					fmt.Fprintf(out, "  script  %s: %q\n", change.Name, change.Command)
				}
			}
			for _, file := range res.Plan.Files {
				fmt.Fprintf(out, "  write   %s\n", file)
			}
		default:
			fmt.Fprintf(out, "%s %s at %s\n", red.Render("failed"), res.Provider, res.FailedStep)
			for _, path := range res.RolledBack {
				fmt.Fprintf(out, "  rolled back %s\n", path)
			}
			for _, note := range res.ManualCleanup {
				fmt.Fprintf(out, "  manual cleanup: %s\n", note)
			}
		}
	}
	return nil
}

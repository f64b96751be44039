package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"amaris/internal/engine"
	"amaris/internal/paths"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show providers installed in the project",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	ledgers, err := engine.ListLedgers(pp)
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(ledgers, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	if len(ledgers) == 0 {
		fmt.Fprintln(out, "No providers installed.")
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	faint := lipgloss.NewStyle().Faint(true).Inline(true)

	fmt.Fprintln(out, bold.Render("INSTALLED:")+" "+pp.Root)
	for _, ledger := range ledgers {
		fmt.Fprintf(out, "  %-16s %d packages, %d files, %d scripts %s\n",
			ledger.Provider,
			len(ledger.Packages), len(ledger.Files), len(ledger.Scripts),
			faint.Render("applied "+ledger.AppliedAt.Format("2006-01-02 15:04")))
	}
	return nil
}

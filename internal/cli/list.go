package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered providers",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	docs := registry.List()

	if outputJSON {
		type listEntry struct {
			Name           string `json:"name"`
			Description    string `json:"description"`
			PackageManager string `json:"package_manager"`
			Packages       int    `json:"packages"`
			Files          int    `json:"files"`
			Scripts        int    `json:"scripts"`
		}
		entries := make([]listEntry, 0, len(docs))
		for _, doc := range docs {
			entries = append(entries, listEntry{
				Name:           doc.Name,
				Description:    doc.Description,
				PackageManager: doc.PackageManager,
				Packages:       len(doc.Packages),
				Files:          len(doc.Configuration),
				Scripts:        len(doc.Scripts),
			})
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	if len(docs) == 0 {
		fmt.Fprintln(out, "No providers registered. Run `amaris init` to seed the example provider.")
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	faint := lipgloss.NewStyle().Faint(true).Inline(true)

	fmt.Fprintln(out, bold.Render("PROVIDERS:"))
	for _, doc := range docs {
		fmt.Fprintf(out, "  %-16s %s %s\n",
			doc.Name,
			doc.Description,
			faint.Render(fmt.Sprintf("(%d packages, %d files, %d scripts)",
				len(doc.Packages), len(doc.Configuration), len(doc.Scripts))))
	}
	return nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"amaris/pkg/provider"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [provider.json]",
		Short: "Validate provider documents",
		Long: "Validate checks a provider file against the provider contract. " +
			"Without arguments every registered provider is checked.",
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
}

type validateFinding struct {
	Provider string `json:"provider"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	var findings []validateFinding

	if len(args) == 1 {
		findings = append(findings, validateFile(args[0])...)
	} else {
		registry, err := loadRegistry()
		if err != nil {
			// LoadAll reports per-file problems in one combined error and
			// still returns every valid document.
			findings = append(findings, validateFinding{Provider: "-", Message: err.Error()})
		}
		if registry != nil {
			for _, doc := range registry.List() {
				findings = append(findings, validateDoc(doc.Name, doc)...)
			}
		}
	}

	return writeValidateResult(cmd, findings)
}

func validateFile(path string) []validateFinding {
	doc, err := provider.Load(path)
	if err != nil {
		var verrs provider.ValidationErrors
		if errors.As(err, &verrs) {
			findings := make([]validateFinding, 0, len(verrs))
			for _, issue := range verrs.Issues() {
				findings = append(findings, validateFinding{Provider: path, Field: issue.Field, Message: issue.Message})
			}
			return findings
		}
		return []validateFinding{{Provider: path, Message: err.Error()}}
	}
	return validateDoc(doc.Name, doc)
}

func validateDoc(name string, doc provider.Document) []validateFinding {
	err := doc.Validate()
	if err == nil {
		return nil
	}
	var verrs provider.ValidationErrors
	if !errors.As(err, &verrs) {
		return []validateFinding{{Provider: name, Message: err.Error()}}
	}
	findings := make([]validateFinding, 0, len(verrs))
	for _, issue := range verrs.Issues() {
		findings = append(findings, validateFinding{Provider: name, Field: issue.Field, Message: issue.Message})
	}
	return findings
}

func writeValidateResult(cmd *cobra.Command, findings []validateFinding) error {
	if outputJSON {
		if findings == nil {
			findings = []validateFinding{}
		}
		data, err := json.MarshalIndent(findings, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		out := cmd.OutOrStdout()
		if len(findings) == 0 {
			green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
			fmt.Fprintln(out, green.Render("OK")+" all providers valid")
			return nil
		}
		red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)
		for _, f := range findings {
			if f.Field != "" {
				fmt.Fprintf(out, "%s %s: %s %s\n", red.Render("ERROR"), f.Provider, f.Field, f.Message)
			} else {
				fmt.Fprintf(out, "%s %s: %s\n", red.Render("ERROR"), f.Provider, f.Message)
			}
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("%d validation findings", len(findings))
	}
	return nil
}

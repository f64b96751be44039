package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"amaris/internal/installer"
	"amaris/internal/paths"
	"amaris/pkg/provider"
)

var (
	projectDir string
	outputJSON bool
)

func init() {
	// Validation accepts exactly the managers the installer registry can
	// drive, so adding a manager is one change.
	provider.KnownManagers = installer.Supported
}

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amaris",
		Short: "Apply declarative tooling providers to a project",
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to project directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newApplyCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// resolveHome returns the amaris home, honoring AMARIS_HOME for test and
// sandbox isolation.
func resolveHome() (paths.HomePaths, error) {
	if dir := os.Getenv("AMARIS_HOME"); dir != "" {
		return paths.HomeAt(dir)
	}
	return paths.Home()
}

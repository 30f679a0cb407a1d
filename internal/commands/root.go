package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bankfeed",
		Short:   "Bank-feed reconciliation for the accounting backend",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newApproveCommand())
	rootCmd.AddCommand(newRejectCommand())
	rootCmd.AddCommand(newExcludeCommand())
	rootCmd.AddCommand(newMatchCommand())
	rootCmd.AddCommand(newPostCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

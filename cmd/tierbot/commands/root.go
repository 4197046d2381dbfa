package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command all subcommands attach to.
var rootCmd = &cobra.Command{
	Use:   "tierbot",
	Short: "Tiered issue-assignment gatekeeper for GitHub repositories",
	Long: `Tier-Bot gates self-assignment of labeled issues behind a contribution
ladder: contributors work up from good-first-issue to beginner, intermediate
and advanced issues by completing issues of the lower tiers first.

It is designed to run inside GitHub Actions workflows triggered by
issue_comment and issues events.`,
}

// Execute runs the root command and exits non-zero on failure so
// Actions workflow runs surface errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: .github/tierbot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

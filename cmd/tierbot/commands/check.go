package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tiergh/tier-bot/internal/core/policy"
	"github.com/tiergh/tier-bot/internal/integrations/github"
	"github.com/tiergh/tier-bot/internal/lists"
)

var (
	checkUser string
	checkTier string
	checkRepo string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a user's eligibility for a tier without an event",
	Long: `Run the eligibility engine once for a user and tier and print the
decision as JSON. No comments are posted and no assignments change; this is
for maintainers answering "why was this user rejected?".`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkUser, "user", "", "GitHub username to evaluate (required)")
	checkCmd.Flags().StringVar(&checkTier, "tier", "", "Tier to evaluate against: gfi, beginner, intermediate, advanced (required)")
	checkCmd.Flags().StringVar(&checkRepo, "repo", "", "Repository as owner/name (required)")

	for _, flag := range []string{"user", "tier", "repo"} {
		if err := checkCmd.MarkFlagRequired(flag); err != nil {
			fmt.Printf("Warning: Failed to mark %s flag as required: %v\n", flag, err)
		}
	}
}

func runCheck(cmd *cobra.Command, args []string) {
	tier, ok := policy.ParseTier(checkTier)
	if !ok {
		fmt.Printf("Unknown tier %q (expected gfi, beginner, intermediate or advanced)\n", checkTier)
		os.Exit(1)
	}

	org, repo, ok := strings.Cut(checkRepo, "/")
	if !ok || org == "" || repo == "" {
		fmt.Printf("Invalid --repo %q (expected owner/name)\n", checkRepo)
		os.Exit(1)
	}

	cfg := loadBotConfig()
	table, err := cfg.BuildTable()
	if err != nil {
		fmt.Printf("Error building policy table: %v\n", err)
		os.Exit(1)
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		fmt.Println("GITHUB_TOKEN is required")
		os.Exit(1)
	}

	ctx := context.Background()
	ghClient := github.NewClient(ctx, token)
	repoClient := github.NewRepoClient(ghClient, org, repo)
	spam := lists.NewSpamRegistry(listLoader(ctx, ghClient, cfg.SpamList, org, repo))
	engine := policy.NewEngine(table, repoClient, spam, repoClient, policy.NewScanner(repoClient)).WithVerbose(verbose)

	decision := engine.Evaluate(ctx, checkUser, tier)

	out, _ := json.MarshalIndent(decision, "", "  ")
	fmt.Println(string(out))

	if !decision.Eligible {
		os.Exit(2)
	}
}

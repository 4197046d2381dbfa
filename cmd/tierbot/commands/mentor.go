package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
)

var (
	mentorEventFile string
	mentorDryRun    bool
)

// mentorCmd represents the mentor command
var mentorCmd = &cobra.Command{
	Use:   "mentor",
	Short: "Post the mentor-of-the-day ping for a GFI assignment event",
	Long: `Run only the mentor-ping workflow for an issues/assigned event: when a
human was assigned a good-first-issue, post a one-time welcome comment pinging
today's mentor from the roster.`,
	Run: runMentor,
}

func init() {
	rootCmd.AddCommand(mentorCmd)

	mentorCmd.Flags().StringVar(&mentorEventFile, "event", "", "Path to event JSON file")
	mentorCmd.Flags().BoolVar(&mentorDryRun, "dry-run", false, "Run in dry-run mode (no side effects)")
}

func runMentor(cmd *cobra.Command, args []string) {
	cfg := loadBotConfig()

	if mentorEventFile == "" {
		mentorEventFile = os.Getenv("GITHUB_EVENT_PATH")
	}
	if mentorEventFile == "" {
		fmt.Println("Please provide --event <file> or set GITHUB_EVENT_PATH")
		os.Exit(1)
	}

	event, err := loadEvent(mentorEventFile)
	if err != nil {
		fmt.Printf("Error loading event: %v\n", err)
		os.Exit(1)
	}
	applyRepoFallback(event)
	if event.Org == "" || event.Repo == "" || event.Number == 0 {
		fmt.Println("Event is missing org, repo or issue number")
		os.Exit(1)
	}

	table, err := cfg.BuildTable()
	if err != nil {
		fmt.Printf("Error building policy table: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	deps, ghClient, err := initializeDependencies(ctx, cfg, table, event.Org, event.Repo)
	if err != nil {
		fmt.Printf("Error initializing dependencies: %v\n", err)
		os.Exit(1)
	}
	deps.DryRun = mentorDryRun

	if len(event.Labels) == 0 {
		if err := hydrateEvent(ctx, ghClient, event); err != nil {
			fmt.Printf("Error fetching issue #%d: %v\n", event.Number, err)
			os.Exit(1)
		}
	}

	stepNames, _ := pipeline.GetPreset("mentor-ping")
	result, err := ExecutePipeline(ctx, event, cfg, table, deps, stepNames)
	if err != nil {
		fmt.Printf("Mentor ping failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

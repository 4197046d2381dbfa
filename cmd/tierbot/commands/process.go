package commands

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
	"github.com/tiergh/tier-bot/internal/tui"
)

var (
	eventFile string
	dryRun    bool
	workflow  string
	repoName  string
	orgName   string
	issueNum  int
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a single webhook event through the pipeline",
	Long: `Process a single issues or issue_comment event through the Tier-Bot
pipeline. The event is read from a JSON file, either in the flat event schema
or as the raw payload GitHub Actions writes to GITHUB_EVENT_PATH.`,
	Run: func(cmd *cobra.Command, args []string) {
		runProcess()
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&eventFile, "event", "", "Path to event JSON file")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (no side effects)")
	processCmd.Flags().StringVar(&workflow, "workflow", "", "Workflow preset to run (inferred from the event if empty)")
	processCmd.Flags().StringVar(&repoName, "repo", "", "Repository name (override)")
	processCmd.Flags().StringVar(&orgName, "org", "", "Organization name (override)")
	processCmd.Flags().IntVar(&issueNum, "number", 0, "Issue number (override)")
}

func runProcess() {
	cfg := loadBotConfig()

	if eventFile == "" {
		eventFile = os.Getenv("GITHUB_EVENT_PATH")
	}
	if eventFile == "" {
		fmt.Println("Please provide --event <file> or set GITHUB_EVENT_PATH")
		os.Exit(1)
	}

	event, err := loadEvent(eventFile)
	if err != nil {
		fmt.Printf("Error loading event: %v\n", err)
		os.Exit(1)
	}

	// Override if flags provided
	if orgName != "" {
		event.Org = orgName
	}
	if repoName != "" {
		event.Repo = repoName
	}
	if issueNum != 0 {
		event.Number = issueNum
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
	deps.DryRun = dryRun

	// Sparse payloads (workflow_dispatch, number-only overrides) carry
	// no labels; fetch the issue to fill the gaps.
	if len(event.Labels) == 0 {
		if err := hydrateEvent(ctx, ghClient, event); err != nil {
			fmt.Printf("Error fetching issue #%d: %v\n", event.Number, err)
			os.Exit(1)
		}
	}

	stepNames := pipeline.ResolveSteps(cfg.Steps, workflow, event)
	if verbose {
		fmt.Printf("Pipeline steps: %v\n", stepNames)
	}

	statusChan := make(chan tui.PipelineStatusMsg)

	// Actions runners have no TTY; run headless there.
	isCI := os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"

	if isCI {
		fmt.Println("[tierbot] Running in CI mode (no TUI)")
		runPipeline(nil, deps, stepNames, event, cfg, table, statusChan)
		fmt.Println("[tierbot] Pipeline completed")
		return
	}

	model := tui.NewModel(stepNames, statusChan)
	p := tea.NewProgram(model)

	go func() {
		runPipeline(p, deps, stepNames, event, cfg, table, statusChan)
	}()

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tiergh/tier-bot/internal/core/config"
	"github.com/tiergh/tier-bot/internal/core/pipeline"
	"github.com/tiergh/tier-bot/internal/core/policy"
	"github.com/tiergh/tier-bot/internal/integrations/github"
	"github.com/tiergh/tier-bot/internal/lists"
)

// loadBotConfig loads the effective configuration: the flag-specified
// or discovered file with extends-inheritance resolved, falling back to
// defaults when no file exists.
func loadBotConfig() *config.Config {
	fetcher := func(ref string) ([]byte, error) {
		org, repo, branch, path, err := config.ParseExtendsRef(ref)
		if err != nil {
			return nil, err
		}
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN required to fetch remote config %s", ref)
		}
		ghClient := github.NewClient(context.Background(), token)
		return ghClient.GetFileContent(context.Background(), org, repo, path, branch)
	}

	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = config.FindConfigPath("")
	}

	if cfgPath == "" {
		if verbose {
			fmt.Println("No configuration file found. Using defaults and environment variables.")
		}
		return config.Default()
	}

	cfg, err := config.LoadWithInheritance(cfgPath, fetcher)
	if err != nil {
		fmt.Printf("Warning: Failed to load config from %s: %v. Proceeding with defaults.\n", cfgPath, err)
		return config.Default()
	}
	if verbose {
		fmt.Printf("Loaded config from %s\n", cfgPath)
	}
	return cfg
}

// initializeDependencies wires the GitHub client, spam registry,
// mentor roster and eligibility engine for processing events against
// the given repository.
func initializeDependencies(ctx context.Context, cfg *config.Config, table policy.Table, org, repo string) (*pipeline.Dependencies, *github.Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, nil, fmt.Errorf("GITHUB_TOKEN is required")
	}

	ghClient := github.NewClient(ctx, token)
	repoClient := github.NewRepoClient(ghClient, org, repo)

	spam := lists.NewSpamRegistry(listLoader(ctx, ghClient, cfg.SpamList, org, repo))
	scanner := policy.NewScanner(repoClient)
	engine := policy.NewEngine(table, repoClient, spam, repoClient, scanner).WithVerbose(verbose)

	deps := &pipeline.Dependencies{
		Tracker:   ghClient,
		Evaluator: engine,
		Verbose:   verbose,
	}

	// The roster is only fatal to the mentor handler, so a load failure
	// here is a warning; the mentor step errors out if it runs without
	// one.
	roster, err := lists.LoadMentorRoster(listLoader(ctx, ghClient, cfg.MentorRoster, org, repo))
	if err != nil {
		fmt.Printf("Warning: mentor roster unavailable: %v\n", err)
	} else {
		deps.Roster = roster
	}

	return deps, ghClient, nil
}

// applyRepoFallback fills the event's repository identity from the
// GITHUB_REPOSITORY env var Actions sets, when the payload lacks it.
func applyRepoFallback(event *pipeline.Event) {
	if event.Org != "" && event.Repo != "" {
		return
	}
	org, repo, ok := strings.Cut(os.Getenv("GITHUB_REPOSITORY"), "/")
	if !ok {
		return
	}
	if event.Org == "" {
		event.Org = org
	}
	if event.Repo == "" {
		event.Repo = repo
	}
}

// hydrateEvent fills event fields a sparse payload left empty by
// fetching the issue. Workflow dispatch payloads, for example, carry
// only the issue number.
func hydrateEvent(ctx context.Context, client *github.Client, event *pipeline.Event) error {
	issue, err := client.GetIssue(ctx, event.Org, event.Repo, event.Number)
	if err != nil {
		return err
	}

	if event.Title == "" {
		event.Title = issue.GetTitle()
	}
	if event.State == "" {
		event.State = issue.GetState()
	}
	if event.Author == "" {
		event.Author = issue.GetUser().GetLogin()
	}
	if event.URL == "" {
		event.URL = issue.GetHTMLURL()
	}
	if len(event.Labels) == 0 {
		for _, label := range issue.Labels {
			event.Labels = append(event.Labels, label.GetName())
		}
	}
	if event.Assignee == "" {
		event.Assignee = issue.GetAssignee().GetLogin()
	}
	return nil
}

// listLoader reads a list resource from the local checkout when it
// exists, otherwise from the repository contents API. Actions runs
// that check out the repo hit the fast path.
func listLoader(ctx context.Context, client *github.Client, res config.ResourceConfig, org, repo string) lists.Loader {
	if res.Path == "" {
		return nil
	}
	if _, err := os.Stat(res.Path); err == nil {
		return lists.FileLoader(res.Path)
	}
	return func() ([]byte, error) {
		return client.GetFileContent(ctx, org, repo, res.Path, res.Ref)
	}
}

// Package steps contains the modular pipeline steps that make up the
// event handlers. Each step implements the pipeline.Step interface.
package steps

import (
	"log"
	"strings"

	"github.com/tiergh/tier-bot/internal/core/config"
	"github.com/tiergh/tier-bot/internal/core/pipeline"
)

// Gatekeeper filters events the bot should not act on: disabled
// repositories, bot actors, and issues without a tier label.
type Gatekeeper struct {
	verbose bool
}

// NewGatekeeper creates a new gatekeeper step.
func NewGatekeeper(deps *pipeline.Dependencies) *Gatekeeper {
	return &Gatekeeper{verbose: deps.Verbose}
}

// Name returns the step name.
func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

// Run checks repository configuration and resolves the issue's tier.
func (s *Gatekeeper) Run(ctx *pipeline.Context) error {
	if s.verbose {
		log.Printf("[gatekeeper] issue #%d, EventType=%q, Action=%q, Repo=%s/%s",
			ctx.Event.Number, ctx.Event.EventType, ctx.Event.Action, ctx.Event.Org, ctx.Event.Repo)
	}

	// Skip events triggered by bot actors to prevent loops: the bot's
	// own comment or assignment would otherwise trigger a new run.
	for _, actor := range []string{ctx.Event.CommentAuthor, ctx.Event.Assignee} {
		if actor != "" && isBotActor(actor, ctx.Config.BotUsers) {
			log.Printf("[gatekeeper] skipping event from bot actor %q", actor)
			ctx.Result.Skipped = true
			ctx.Result.SkipReason = "event triggered by bot"
			return pipeline.ErrSkipPipeline
		}
	}

	// If the repositories list is empty, allow all (single-repo mode).
	if len(ctx.Config.Repositories) > 0 {
		repoConfig := findRepoConfig(ctx)
		if repoConfig == nil {
			ctx.Result.Skipped = true
			ctx.Result.SkipReason = "repository not configured"
			return pipeline.ErrSkipPipeline
		}
		if !repoConfig.Enabled {
			ctx.Result.Skipped = true
			ctx.Result.SkipReason = "repository processing disabled"
			return pipeline.ErrSkipPipeline
		}
	}

	// Only issues carrying a tier label are in scope.
	tier, ok := ctx.Table.TierForLabels(ctx.Event.Labels)
	if !ok {
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "no tier label on issue"
		return pipeline.ErrSkipPipeline
	}

	ctx.Tier = tier
	ctx.Result.Tier = string(tier)
	if s.verbose {
		log.Printf("[gatekeeper] issue #%d resolved to tier %s", ctx.Event.Number, tier)
	}
	return nil
}

// isBotActor returns true if the given username matches a known bot
// pattern or is in the user-configured bot_users list.
func isBotActor(actor string, configBotUsers []string) bool {
	// Built-in heuristics
	if strings.HasSuffix(actor, "[bot]") ||
		strings.HasPrefix(actor, "tierbot-") ||
		strings.EqualFold(actor, "tierbot") {
		return true
	}
	// User-configured bot users
	for _, u := range configBotUsers {
		if strings.EqualFold(actor, u) {
			return true
		}
	}
	return false
}

// findRepoConfig looks up the repository configuration.
func findRepoConfig(ctx *pipeline.Context) *config.RepositoryConfig {
	for i := range ctx.Config.Repositories {
		repo := &ctx.Config.Repositories[i]
		if repo.Org == ctx.Event.Org && repo.Repo == ctx.Event.Repo {
			return repo
		}
	}
	return nil
}

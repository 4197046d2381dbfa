package steps

import (
	"fmt"
	"log"
	"strings"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
)

// CandidateCleaner removes the triage candidate label once an issue
// receives a real tier label, keeping the two from coexisting.
type CandidateCleaner struct {
	tracker pipeline.Tracker
	dryRun  bool
	verbose bool
}

// NewCandidateCleaner creates a new candidate cleaner step.
func NewCandidateCleaner(deps *pipeline.Dependencies) *CandidateCleaner {
	return &CandidateCleaner{
		tracker: deps.Tracker,
		dryRun:  deps.DryRun,
		verbose: deps.Verbose,
	}
}

// Name returns the step name.
func (s *CandidateCleaner) Name() string {
	return "candidate_cleaner"
}

// Run removes the candidate label if the issue carries both it and a
// tier label. The gatekeeper already established the tier label.
func (s *CandidateCleaner) Run(ctx *pipeline.Context) error {
	candidate := ctx.Config.CandidateLabel
	if candidate == "" {
		return nil
	}

	if !hasLabel(ctx.Event.Labels, candidate) {
		if s.verbose {
			log.Printf("[candidate_cleaner] issue #%d has no %q label, nothing to clean", ctx.Event.Number, candidate)
		}
		return nil
	}

	if s.dryRun {
		log.Printf("[candidate_cleaner] DRY RUN: would remove %q from issue #%d", candidate, ctx.Event.Number)
		ctx.Result.LabelsRemoved = append(ctx.Result.LabelsRemoved, candidate)
		return nil
	}

	if err := s.tracker.RemoveLabel(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Event.Number, candidate); err != nil {
		return fmt.Errorf("failed to remove %q from issue #%d: %w", candidate, ctx.Event.Number, err)
	}
	ctx.Result.LabelsRemoved = append(ctx.Result.LabelsRemoved, candidate)
	log.Printf("[candidate_cleaner] removed %q from issue #%d", candidate, ctx.Event.Number)
	return nil
}

func hasLabel(labels []string, target string) bool {
	for _, l := range labels {
		if strings.EqualFold(strings.TrimSpace(l), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

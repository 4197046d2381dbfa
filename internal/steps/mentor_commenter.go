package steps

import (
	"fmt"
	"log"
	"time"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
	"github.com/tiergh/tier-bot/internal/core/policy"
	"github.com/tiergh/tier-bot/internal/lists"
	"github.com/tiergh/tier-bot/internal/messages"
)

// MentorCommenter posts a one-time welcome comment pinging the mentor
// of the day when a Good First Issue gets assigned.
type MentorCommenter struct {
	tracker pipeline.Tracker
	roster  *lists.MentorRoster
	now     func() time.Time
	dryRun  bool
	verbose bool
}

// NewMentorCommenter creates a new mentor commenter step.
func NewMentorCommenter(deps *pipeline.Dependencies) *MentorCommenter {
	return &MentorCommenter{
		tracker: deps.Tracker,
		roster:  deps.Roster,
		now:     time.Now,
		dryRun:  deps.DryRun,
		verbose: deps.Verbose,
	}
}

// Name returns the step name.
func (s *MentorCommenter) Name() string {
	return "mentor_commenter"
}

// Run posts the mentor ping for newly assigned Good First Issues.
// A missing roster is an error so the workflow run fails visibly
// rather than silently skipping the ping.
func (s *MentorCommenter) Run(ctx *pipeline.Context) error {
	if ctx.Tier != policy.TierGFI {
		if s.verbose {
			log.Printf("[mentor_commenter] issue #%d is %s, mentor ping only applies to gfi", ctx.Event.Number, ctx.Tier)
		}
		return nil
	}

	assignee := ctx.Event.Assignee
	if assignee == "" || isBotActor(assignee, ctx.Config.BotUsers) {
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "no human assignee"
		return pipeline.ErrSkipPipeline
	}

	if s.roster == nil || s.roster.Len() == 0 {
		return fmt.Errorf("mentor roster is empty, cannot pick mentor for issue #%d", ctx.Event.Number)
	}
	mentor, err := s.roster.MentorFor(s.now())
	if err != nil {
		return fmt.Errorf("failed to pick mentor for issue #%d: %w", ctx.Event.Number, err)
	}

	marker := ctx.Config.Markers.Mentor
	if marker == "" {
		marker = messages.DefaultMentorMarker
	}

	existing, err := s.tracker.ListCommentBodies(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Event.Number)
	if err != nil {
		return fmt.Errorf("failed to list comments on issue #%d: %w", ctx.Event.Number, err)
	}
	if messages.HasMarker(existing, marker) {
		log.Printf("[mentor_commenter] issue #%d already has a mentor ping, skipping", ctx.Event.Number)
		return nil
	}

	body := messages.RenderMentorPing(messages.MentorContext{
		Assignee: assignee,
		Mentor:   mentor,
		Marker:   marker,
	})

	if s.dryRun {
		log.Printf("[mentor_commenter] DRY RUN: would ping mentor %s on issue #%d", mentor, ctx.Event.Number)
		ctx.Result.MentorPinged = true
		return nil
	}

	if err := s.tracker.CreateComment(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Event.Number, body); err != nil {
		return fmt.Errorf("failed to post mentor ping on issue #%d: %w", ctx.Event.Number, err)
	}
	ctx.Result.MentorPinged = true
	log.Printf("[mentor_commenter] pinged mentor %s on issue #%d", mentor, ctx.Event.Number)
	return nil
}

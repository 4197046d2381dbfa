package steps

import (
	"fmt"
	"log"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
	"github.com/tiergh/tier-bot/internal/messages"
)

// ActionExecutor applies the decision: assigning eligible requesters,
// unassigning ineligible assignees, and posting the rejection comment.
// It is the only step with write effects on the issue.
type ActionExecutor struct {
	tracker pipeline.Tracker
	dryRun  bool
	verbose bool
}

// NewActionExecutor creates a new action executor step.
func NewActionExecutor(deps *pipeline.Dependencies) *ActionExecutor {
	return &ActionExecutor{
		tracker: deps.Tracker,
		dryRun:  deps.DryRun,
		verbose: deps.Verbose,
	}
}

// Name returns the step name.
func (s *ActionExecutor) Name() string {
	return "action_executor"
}

// Run executes the assignment or revert plus the rejection comment.
func (s *ActionExecutor) Run(ctx *pipeline.Context) error {
	if ctx.Decision == nil {
		return nil
	}

	if ctx.Decision.Eligible {
		return s.executeAssign(ctx)
	}
	return s.executeRevert(ctx)
}

// executeAssign assigns the requester. Assignment events need no
// action when the user is eligible: the assignment already stands.
func (s *ActionExecutor) executeAssign(ctx *pipeline.Context) error {
	if ctx.Event.EventType != "issue_comment" {
		if s.verbose {
			log.Printf("[action_executor] %s keeps issue #%d, nothing to do", ctx.Subject, ctx.Event.Number)
		}
		return nil
	}

	if s.dryRun {
		log.Printf("[action_executor] DRY RUN: would assign %s to issue #%d", ctx.Subject, ctx.Event.Number)
		ctx.Result.Assigned = true
		return nil
	}

	if err := s.tracker.AddAssignees(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Event.Number, []string{ctx.Subject}); err != nil {
		return fmt.Errorf("failed to assign %s to issue #%d: %w", ctx.Subject, ctx.Event.Number, err)
	}
	ctx.Result.Assigned = true
	log.Printf("[action_executor] assigned %s to issue #%d", ctx.Subject, ctx.Event.Number)
	return nil
}

// executeRevert removes a direct assignment that failed the check and
// posts the rejection comment the response builder rendered.
func (s *ActionExecutor) executeRevert(ctx *pipeline.Context) error {
	// Direct assignment events carry an assignee to remove. Comment
	// requests never assigned anything, so there is nothing to undo.
	if ctx.Event.EventType == "issues" {
		if s.dryRun {
			log.Printf("[action_executor] DRY RUN: would unassign %s from issue #%d", ctx.Subject, ctx.Event.Number)
		} else {
			if err := s.tracker.RemoveAssignees(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Event.Number, []string{ctx.Subject}); err != nil {
				return fmt.Errorf("failed to unassign %s from issue #%d: %w", ctx.Subject, ctx.Event.Number, err)
			}
			log.Printf("[action_executor] unassigned %s from issue #%d", ctx.Subject, ctx.Event.Number)
		}
		ctx.Result.Unassigned = true
	}

	body, ok := ctx.Metadata[metadataComment].(string)
	if !ok || body == "" {
		return nil
	}
	return s.postComment(ctx, body, rejectionMarker(ctx))
}

// postComment posts body unless a comment carrying the marker is
// already on the issue. Duplicate webhook deliveries and overlapping
// workflow runs make re-execution common enough to guard against.
func (s *ActionExecutor) postComment(ctx *pipeline.Context, body, marker string) error {
	existing, err := s.tracker.ListCommentBodies(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Event.Number)
	if err != nil {
		return fmt.Errorf("failed to list comments on issue #%d: %w", ctx.Event.Number, err)
	}
	if messages.HasMarker(existing, marker) {
		log.Printf("[action_executor] issue #%d already has a rejection comment, skipping", ctx.Event.Number)
		return nil
	}

	if s.dryRun {
		log.Printf("[action_executor] DRY RUN: would comment on issue #%d:\n%s", ctx.Event.Number, body)
		ctx.Result.CommentPosted = true
		return nil
	}

	if err := s.tracker.CreateComment(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Event.Number, body); err != nil {
		return fmt.Errorf("failed to comment on issue #%d: %w", ctx.Event.Number, err)
	}
	ctx.Result.CommentPosted = true
	log.Printf("[action_executor] posted rejection comment on issue #%d", ctx.Event.Number)
	return nil
}

// rejectionMarker returns the configured rejection marker, falling
// back to the built-in default.
func rejectionMarker(ctx *pipeline.Context) string {
	if m := ctx.Config.Markers.Rejection; m != "" {
		return m
	}
	return messages.DefaultRejectionMarker
}

package steps

import (
	"fmt"
	"log"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
	"github.com/tiergh/tier-bot/internal/messages"
)

// metadataComment is the pipeline metadata key the response builder
// uses to hand the rendered comment to the action executor.
const metadataComment = "comment"

// ResponseBuilder renders the rejection comment for ineligible
// subjects. Eligible subjects get no comment.
type ResponseBuilder struct {
	verbose bool
}

// NewResponseBuilder creates a new response builder step.
func NewResponseBuilder(deps *pipeline.Dependencies) *ResponseBuilder {
	return &ResponseBuilder{verbose: deps.Verbose}
}

// Name returns the step name.
func (s *ResponseBuilder) Name() string {
	return "response_builder"
}

// Run renders the comment body matching the decision's rejection
// reason and stores it in the pipeline metadata.
func (s *ResponseBuilder) Run(ctx *pipeline.Context) error {
	if ctx.Decision == nil || ctx.Decision.Eligible {
		return nil
	}

	rctx := messages.RenderContext{
		Username:       ctx.Subject,
		Org:            ctx.Event.Org,
		Repo:           ctx.Event.Repo,
		TierLabel:      ctx.Table[ctx.Tier].Label,
		PrereqLabel:    ctx.Decision.Context.PrereqLabel,
		RequiredCount:  ctx.Decision.Context.RequiredCount,
		CompletedCount: ctx.Decision.Context.CompletedCount,
		OpenAssigned:   ctx.Decision.Context.OpenAssigned,
		MaxAllowed:     ctx.Decision.Context.MaxAllowed,
		SpamListed:     ctx.Decision.Context.SpamListed,
		Marker:         ctx.Config.Markers.Rejection,
	}

	body := messages.Render(ctx.Decision.Reason, rctx)
	if body == "" {
		// An unroutable reason. The revert still has to happen, so the
		// pipeline only stops here when comments are configured as
		// mandatory.
		if ctx.Config.Comments.Required {
			return fmt.Errorf("no comment template for rejection reason %q", ctx.Decision.Reason)
		}
		log.Printf("[response_builder] no template for reason %q, reverting without comment", ctx.Decision.Reason)
		return nil
	}

	ctx.Metadata[metadataComment] = body
	if s.verbose {
		log.Printf("[response_builder] rendered %s comment for issue #%d (%d chars)",
			ctx.Decision.Reason, ctx.Event.Number, len(body))
	}
	return nil
}

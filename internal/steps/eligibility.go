package steps

import (
	"log"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
)

// Eligibility evaluates the subject against the tier policy. For
// comment-driven requests the subject was set by the command parser;
// for assignment events it is the newly assigned user.
type Eligibility struct {
	evaluator pipeline.Evaluator
	verbose   bool
}

// NewEligibility creates a new eligibility step.
func NewEligibility(deps *pipeline.Dependencies) *Eligibility {
	return &Eligibility{evaluator: deps.Evaluator, verbose: deps.Verbose}
}

// Name returns the step name.
func (s *Eligibility) Name() string {
	return "eligibility"
}

// Run evaluates the policy decision for the subject and stores it on
// the pipeline context for downstream steps.
func (s *Eligibility) Run(ctx *pipeline.Context) error {
	if ctx.Subject == "" {
		ctx.Subject = ctx.Event.Assignee
		ctx.Result.Subject = ctx.Subject
	}
	if ctx.Subject == "" {
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "no subject to evaluate"
		return pipeline.ErrSkipPipeline
	}

	decision := s.evaluator.Evaluate(ctx.Ctx, ctx.Subject, ctx.Tier)
	ctx.Decision = &decision
	ctx.Result.Eligible = decision.Eligible
	if !decision.Eligible {
		ctx.Result.Reason = string(decision.Reason)
	}

	if decision.Eligible {
		log.Printf("[eligibility] %s is eligible for %s issue #%d", ctx.Subject, ctx.Tier, ctx.Event.Number)
	} else {
		log.Printf("[eligibility] %s is not eligible for %s issue #%d: %s",
			ctx.Subject, ctx.Tier, ctx.Event.Number, decision.Reason)
	}
	return nil
}

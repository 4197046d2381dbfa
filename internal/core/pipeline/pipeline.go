// Package pipeline provides the core pipeline engine for tier-bot.
// It defines the Step interface and Context structure used by all
// event-handler steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiergh/tier-bot/internal/core/config"
	"github.com/tiergh/tier-bot/internal/core/policy"
	"github.com/tiergh/tier-bot/internal/lists"
)

// ErrSkipPipeline indicates that the pipeline should stop gracefully.
// This is not an error condition, just an early exit (e.g., no tier
// label, event from a bot, disabled repo).
var ErrSkipPipeline = errors.New("skip remaining pipeline steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic.
	// It should return ErrSkipPipeline to stop the pipeline gracefully,
	// or any other error to indicate failure.
	Run(ctx *Context) error
}

// Event is the webhook payload slice a handler run operates on.
type Event struct {
	// EventType is the webhook event name: "issues" or "issue_comment".
	EventType string `json:"event_type"`

	// Action is the event action: "created", "assigned", "labeled", ...
	Action string `json:"action"`

	Org    string   `json:"org"`
	Repo   string   `json:"repo"`
	Number int      `json:"number"`
	Title  string   `json:"title,omitempty"`
	State  string   `json:"state,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Author string   `json:"author,omitempty"`
	URL    string   `json:"url,omitempty"`

	// Assignee is the newly assigned user on "assigned" actions.
	Assignee string `json:"assignee,omitempty"`

	// Comment fields are set for issue_comment events.
	CommentBody   string `json:"comment_body,omitempty"`
	CommentAuthor string `json:"comment_author,omitempty"`
}

// Result holds the accumulated results from pipeline execution.
type Result struct {
	IssueNumber   int      `json:"issue_number"`
	Tier          string   `json:"tier,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	Skipped       bool     `json:"skipped,omitempty"`
	SkipReason    string   `json:"skip_reason,omitempty"`
	Eligible      bool     `json:"eligible"`
	Reason        string   `json:"reason,omitempty"`
	Assigned      bool     `json:"assigned,omitempty"`
	Unassigned    bool     `json:"unassigned,omitempty"`
	CommentPosted bool     `json:"comment_posted,omitempty"`
	MentorPinged  bool     `json:"mentor_pinged,omitempty"`
	LabelsRemoved []string `json:"labels_removed,omitempty"`
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// Event is the webhook event being processed.
	Event *Event

	// Config is the loaded configuration.
	Config *config.Config

	// Table is the effective policy table for this run.
	Table policy.Table

	// Result accumulates the processing results.
	Result *Result

	// Tier is the tier resolved from the issue's labels.
	Tier policy.Tier

	// Subject is the user the eligibility decision is about.
	Subject string

	// Decision is the eligibility outcome, set by the eligibility step.
	Decision *policy.Decision

	// Metadata allows steps to pass arbitrary data to subsequent steps.
	Metadata map[string]interface{}
}

// NewContext creates a new pipeline context for an event.
func NewContext(ctx context.Context, event *Event, cfg *config.Config, table policy.Table) *Context {
	return &Context{
		Ctx:      ctx,
		Event:    event,
		Config:   cfg,
		Table:    table,
		Result:   &Result{IssueNumber: event.Number},
		Metadata: make(map[string]interface{}),
	}
}

// Tracker is the tracker-mutation surface the steps use. The GitHub
// client satisfies it; tests substitute fakes.
type Tracker interface {
	AddAssignees(ctx context.Context, org, repo string, number int, assignees []string) error
	RemoveAssignees(ctx context.Context, org, repo string, number int, assignees []string) error
	CreateComment(ctx context.Context, org, repo string, number int, body string) error
	ListCommentBodies(ctx context.Context, org, repo string, number int) ([]string, error)
	RemoveLabel(ctx context.Context, org, repo string, number int, label string) error
}

// Evaluator decides tier eligibility for a user.
type Evaluator interface {
	Evaluate(ctx context.Context, username string, tier policy.Tier) policy.Decision
}

// Dependencies holds the collaborators injected into steps.
type Dependencies struct {
	Tracker   Tracker
	Evaluator Evaluator
	Roster    *lists.MentorRoster
	DryRun    bool
	Verbose   bool
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order.
// Stops on the first error (unless it's ErrSkipPipeline, which is graceful).
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipPipeline) {
				// Graceful early exit
				return nil
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
	}
	return nil
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}

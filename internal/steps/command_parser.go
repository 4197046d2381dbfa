package steps

import (
	"log"
	"strings"

	"github.com/tiergh/tier-bot/internal/core/pipeline"
)

// assignCommands are the comment bodies recognized as a request for
// assignment. Matching is on the first whitespace-separated token of
// the comment, case-insensitively.
var assignCommands = map[string]bool{
	"/assign":    true,
	"/assign-me": true,
}

// CommandParser detects self-assignment commands in issue comments.
// Comments that are not commands end the pipeline without any action.
type CommandParser struct {
	verbose bool
}

// NewCommandParser creates a new command parser step.
func NewCommandParser(deps *pipeline.Dependencies) *CommandParser {
	return &CommandParser{verbose: deps.Verbose}
}

// Name returns the step name.
func (s *CommandParser) Name() string {
	return "command_parser"
}

// Run parses the comment body and records the requesting user as the
// subject of the eligibility check.
func (s *CommandParser) Run(ctx *pipeline.Context) error {
	if ctx.Event.EventType != "issue_comment" {
		if s.verbose {
			log.Printf("[command_parser] skipping, not a comment event (EventType=%q)", ctx.Event.EventType)
		}
		return nil
	}

	if !isAssignCommand(ctx.Event.CommentBody) {
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "comment is not an assign command"
		return pipeline.ErrSkipPipeline
	}

	ctx.Subject = ctx.Event.CommentAuthor
	ctx.Result.Subject = ctx.Subject
	log.Printf("[command_parser] %s requested assignment on issue #%d", ctx.Subject, ctx.Event.Number)
	return nil
}

// isAssignCommand reports whether the comment's first token is a
// recognized assign command.
func isAssignCommand(body string) bool {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return false
	}
	return assignCommands[strings.ToLower(fields[0])]
}

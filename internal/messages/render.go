// Package messages renders the markdown comments the bot posts:
// rejection explanations per structured reason, and the mentor ping.
// Every comment embeds a marker so handlers can detect an earlier post
// and stay idempotent.
package messages

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tiergh/tier-bot/internal/core/policy"
)

// Markers embedded in generated comments for duplicate-guard scans.
// Override via config for forks that run their own bot identity.
const (
	DefaultRejectionMarker = "<!-- tierbot:rejection -->"
	DefaultMentorMarker    = "<!-- tierbot:mentor-ping -->"
)

// RenderContext carries everything a rejection message interpolates.
type RenderContext struct {
	Username  string
	Org       string
	Repo      string
	TierLabel string

	// Populated for missing-prerequisite reasons.
	PrereqLabel    string
	RequiredCount  int
	CompletedCount int

	// Populated for capacity rejections.
	OpenAssigned int
	MaxAllowed   int
	SpamListed   bool

	// Marker defaults to DefaultRejectionMarker when empty.
	Marker string
}

// Render maps a rejection reason to its markdown comment. It is total
// over the RejectionReason enum; an unrecognized reason renders to ""
// and callers treat that as "suppress the comment, still revert".
func Render(reason policy.RejectionReason, rctx RenderContext) string {
	var body string

	switch reason {
	case policy.ReasonMissingGFI, policy.ReasonMissingBeginner, policy.ReasonMissingIntermediate:
		body = missingPrerequisite(rctx)
	case policy.ReasonCapacity:
		body = capacity(rctx)
	case policy.ReasonSpam:
		body = spam(rctx)
	default:
		return ""
	}

	marker := rctx.Marker
	if marker == "" {
		marker = DefaultRejectionMarker
	}
	return marker + "\n" + body
}

func missingPrerequisite(rctx RenderContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi @%s, thanks for your interest in this issue!\n\n", rctx.Username)
	fmt.Fprintf(&b,
		"Issues labeled **%s** are reserved for contributors who have completed at least **%d** issue(s) labeled **%s** in this repository. You have completed **%d / %d** so far, so I have not assigned you this one.\n\n",
		rctx.TierLabel, rctx.RequiredCount, rctx.PrereqLabel, rctx.CompletedCount, rctx.RequiredCount)
	fmt.Fprintf(&b, "A good place to start: [open **%s** issues](%s).\n",
		rctx.PrereqLabel, browseURL(rctx.Org, rctx.Repo, rctx.PrereqLabel))

	return b.String()
}

func capacity(rctx RenderContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi @%s!\n\n", rctx.Username)
	fmt.Fprintf(&b,
		"You currently have **%d** open assigned issue(s) in this repository, which is at your limit of **%d**. Please finish or release one of your open assignments before taking another.\n",
		rctx.OpenAssigned, rctx.MaxAllowed)
	if rctx.SpamListed {
		b.WriteString("\n> [!NOTE]\n> A reduced limit applies to this account.\n")
	}

	return b.String()
}

func spam(rctx RenderContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi @%s.\n\n", rctx.Username)
	fmt.Fprintf(&b,
		"This account is currently restricted from self-assigning **%s** issues. If you believe this is a mistake, please reach out to the maintainers.\n",
		rctx.TierLabel)

	return b.String()
}

// MentorContext carries the mentor-ping interpolations.
type MentorContext struct {
	Assignee string
	Mentor   string

	// Marker defaults to DefaultMentorMarker when empty.
	Marker string
}

// RenderMentorPing builds the one-time mentor-assignment comment.
func RenderMentorPing(mctx MentorContext) string {
	marker := mctx.Marker
	if marker == "" {
		marker = DefaultMentorMarker
	}

	var b strings.Builder
	b.WriteString(marker + "\n")
	fmt.Fprintf(&b, "Welcome @%s, and thanks for picking this up! 🎉\n\n", mctx.Assignee)
	fmt.Fprintf(&b, "@%s is today's mentor and can help if you get stuck. Feel free to ask questions right here on the issue.\n", mctx.Mentor)

	return b.String()
}

// HasMarker reports whether any existing comment body already carries
// the marker. Used to keep comment threads idempotent under duplicate
// event delivery.
func HasMarker(bodies []string, marker string) bool {
	if marker == "" {
		return false
	}
	for _, body := range bodies {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// browseURL builds the issue-search link for a label.
func browseURL(org, repo, label string) string {
	query := fmt.Sprintf(`is:issue is:open label:"%s" no:assignee`, label)
	return fmt.Sprintf("https://github.com/%s/%s/issues?q=%s", org, repo, url.QueryEscape(query))
}

package policy

import (
	"context"
	"strings"
	"time"
)

// MergedPullRequest is the slice of pull-request state the scanner
// needs: its number and the timestamps used to derive an effective
// merge time.
type MergedPullRequest struct {
	Number    int
	ClosedAt  time.Time
	UpdatedAt time.Time
}

// EffectiveMergeTime prefers the close timestamp and falls back to
// last-updated when the close time is missing.
func (pr MergedPullRequest) EffectiveMergeTime() time.Time {
	if !pr.ClosedAt.IsZero() {
		return pr.ClosedAt
	}
	return pr.UpdatedAt
}

// ContributionSource provides the tracker reads the completion scanner
// performs. Implementations must return merged pull requests
// newest-first; the cutoff short-circuit depends on that order.
type ContributionSource interface {
	// MergedPullRequests lists the user's merged pull requests in the
	// repository, newest first.
	MergedPullRequests(ctx context.Context, username string) ([]MergedPullRequest, error)

	// LinkedClosingIssues returns the numbers of issues the pull
	// request closed, derived from its timeline.
	LinkedClosingIssues(ctx context.Context, prNumber int) ([]int, error)

	// IssueLabels returns the current label names on an issue.
	IssueLabels(ctx context.Context, issueNumber int) ([]string, error)
}

// Scanner counts how many issues of a given tier label a contributor
// has completed, by walking their merged pull requests and the issues
// those pull requests closed.
type Scanner struct {
	source ContributionSource
}

// NewScanner creates a completion scanner over the given source.
func NewScanner(source ContributionSource) *Scanner {
	return &Scanner{source: source}
}

// CompletedCount counts qualifying completed issues up to required and
// stops. The returned count is therefore capped at required; callers
// compare it against required, they do not treat it as a total.
//
// A single pull request may close several qualifying issues and each
// counts. When cutoff is non-zero, scanning stops at the first pull
// request whose effective merge time predates it: the scan is
// newest-first, so every later entry is older still and cannot
// reference a label that did not yet exist.
func (s *Scanner) CompletedCount(ctx context.Context, username, tierLabel string, required int, cutoff time.Time) (int, error) {
	if required <= 0 {
		return 0, nil
	}

	prs, err := s.source.MergedPullRequests(ctx, username)
	if err != nil {
		return 0, err
	}
	if len(prs) == 0 {
		return 0, nil
	}

	completed := 0
	for _, pr := range prs {
		if !cutoff.IsZero() && pr.EffectiveMergeTime().Before(cutoff) {
			break
		}

		linked, err := s.source.LinkedClosingIssues(ctx, pr.Number)
		if err != nil {
			return completed, err
		}

		for _, issueNumber := range linked {
			labels, err := s.source.IssueLabels(ctx, issueNumber)
			if err != nil {
				return completed, err
			}
			if containsLabel(labels, tierLabel) {
				completed++
				if completed >= required {
					return completed, nil
				}
			}
		}
	}

	return completed, nil
}

// HasCompleted reports whether the contributor has completed at least
// required issues carrying tierLabel.
func (s *Scanner) HasCompleted(ctx context.Context, username, tierLabel string, required int, cutoff time.Time) (bool, error) {
	count, err := s.CompletedCount(ctx, username, tierLabel, required, cutoff)
	if err != nil {
		return false, err
	}
	return count >= required, nil
}

// equalLabel compares tier labels case-insensitively.
func equalLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsLabel(labels []string, target string) bool {
	for _, l := range labels {
		if equalLabel(l, target) {
			return true
		}
	}
	return false
}

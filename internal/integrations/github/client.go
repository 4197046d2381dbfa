// Package github wraps the GitHub REST API behind the narrow surface
// the tiering bot needs: collaborator roles, assignment counts, merged
// pull requests and their closed issues, labels, assignees, comments,
// and repository file contents.
package github

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-github/v63/github"

	"github.com/tiergh/tier-bot/internal/core/policy"
)

// Client wraps the GitHub API client.
type Client struct {
	client *github.Client
	retry  RetryConfig
}

// GetIssue fetches issue details.
func (c *Client) GetIssue(ctx context.Context, org, repo string, number int) (*github.Issue, error) {
	issue, err := withRetry(ctx, c.retry, "get issue", func() (*github.Issue, error) {
		issue, _, err := c.client.Issues.Get(ctx, org, repo, number)
		return issue, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue: %w", err)
	}
	return issue, nil
}

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, org, repo string, number int, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}

	comment := &github.IssueComment{
		Body: github.String(body),
	}
	_, err := withRetry(ctx, c.retry, "create comment", func() (*github.IssueComment, error) {
		created, _, err := c.client.Issues.CreateComment(ctx, org, repo, number, comment)
		return created, err
	})
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListCommentBodies returns the bodies of all comments on an issue,
// oldest first. Used for duplicate-guard marker scans.
func (c *Client) ListCommentBodies(ctx context.Context, org, repo string, number int) ([]string, error) {
	var bodies []string
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, org, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}
		for _, comment := range comments {
			bodies = append(bodies, comment.GetBody())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return bodies, nil
}

// AddAssignees assigns users to an issue.
func (c *Client) AddAssignees(ctx context.Context, org, repo string, number int, assignees []string) error {
	if len(assignees) == 0 {
		return fmt.Errorf("assignees cannot be empty")
	}

	_, err := withRetry(ctx, c.retry, "add assignees", func() (*github.Issue, error) {
		issue, _, err := c.client.Issues.AddAssignees(ctx, org, repo, number, assignees)
		return issue, err
	})
	if err != nil {
		return fmt.Errorf("failed to add assignees: %w", err)
	}
	return nil
}

// RemoveAssignees unassigns users from an issue.
func (c *Client) RemoveAssignees(ctx context.Context, org, repo string, number int, assignees []string) error {
	if len(assignees) == 0 {
		return fmt.Errorf("assignees cannot be empty")
	}

	_, err := withRetry(ctx, c.retry, "remove assignees", func() (*github.Issue, error) {
		issue, _, err := c.client.Issues.RemoveAssignees(ctx, org, repo, number, assignees)
		return issue, err
	})
	if err != nil {
		return fmt.Errorf("failed to remove assignees: %w", err)
	}
	return nil
}

// RemoveLabel removes a label from an issue. A missing label is not an
// error; someone may have removed it first.
func (c *Client) RemoveLabel(ctx context.Context, org, repo string, number int, label string) error {
	_, err := c.client.Issues.RemoveLabelForIssue(ctx, org, repo, number, label)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to remove label %q: %w", label, err)
	}
	return nil
}

// IssueLabels returns the current label names on an issue.
func (c *Client) IssueLabels(ctx context.Context, org, repo string, number int) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: 100}

	for {
		labels, resp, err := c.client.Issues.ListLabelsByIssue(ctx, org, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		for _, label := range labels {
			names = append(names, label.GetName())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

// PermissionLevel resolves a user's repository role. A user who is not
// a collaborator resolves to RoleNone without error; every other
// failure is returned so callers can fail closed.
func (c *Client) PermissionLevel(ctx context.Context, org, repo, username string) (policy.Role, error) {
	level, err := withRetry(ctx, c.retry, "get permission level", func() (*github.RepositoryPermissionLevel, error) {
		level, _, err := c.client.Repositories.GetPermissionLevel(ctx, org, repo, username)
		return level, err
	})
	if err != nil {
		if isNotFound(err) {
			return policy.RoleNone, nil
		}
		return policy.RoleNone, fmt.Errorf("failed to get permission level: %w", err)
	}

	// role_name carries the fine-grained role (triage, maintain);
	// permission collapses those to read/write.
	if role := level.GetRoleName(); role != "" {
		return policy.ParseRole(role), nil
	}
	return policy.ParseRole(level.GetPermission()), nil
}

// CountOpenAssignedIssues counts the user's currently open assigned
// issues in the repository, excluding pull requests.
func (c *Client) CountOpenAssignedIssues(ctx context.Context, org, repo, username string) (int, error) {
	query := fmt.Sprintf("repo:%s/%s is:issue is:open assignee:%s", org, repo, username)

	result, err := withRetry(ctx, c.retry, "count open assigned", func() (*github.IssuesSearchResult, error) {
		result, _, err := c.client.Search.Issues(ctx, query, &github.SearchOptions{
			ListOptions: github.ListOptions{PerPage: 1},
		})
		return result, err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to search open assigned issues: %w", err)
	}

	return result.GetTotal(), nil
}

// MergedPullRequests lists the user's merged pull requests in the
// repository, newest first by effective merge time. Search only sorts
// by creation time, which is not merge order, so the collected slice
// is re-sorted before returning.
func (c *Client) MergedPullRequests(ctx context.Context, org, repo, username string) ([]policy.MergedPullRequest, error) {
	query := fmt.Sprintf("repo:%s/%s is:pr is:merged author:%s", org, repo, username)
	opts := &github.SearchOptions{
		Sort:        "created",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var prs []policy.MergedPullRequest
	for {
		result, resp, err := c.client.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search merged pull requests: %w", err)
		}
		for _, item := range result.Issues {
			prs = append(prs, policy.MergedPullRequest{
				Number:    item.GetNumber(),
				ClosedAt:  item.GetClosedAt().Time,
				UpdatedAt: item.GetUpdatedAt().Time,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	sortByMergeTime(prs)
	return prs, nil
}

// sortByMergeTime orders pull requests newest-first by effective merge
// time, the precondition the completion scanner's cutoff break depends
// on.
func sortByMergeTime(prs []policy.MergedPullRequest) {
	sort.Slice(prs, func(i, j int) bool {
		return prs[i].EffectiveMergeTime().After(prs[j].EffectiveMergeTime())
	})
}

// LinkedClosingIssues walks a pull request's timeline and returns the
// numbers of issues it closed.
func (c *Client) LinkedClosingIssues(ctx context.Context, org, repo string, prNumber int) ([]int, error) {
	var linked []int
	opts := &github.ListOptions{PerPage: 100}

	for {
		events, resp, err := c.client.Issues.ListIssueTimeline(ctx, org, repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list timeline: %w", err)
		}
		for _, event := range events {
			if event.GetEvent() != "closed" {
				continue
			}
			source := event.GetSource()
			if source == nil || source.Issue == nil {
				continue
			}
			linked = append(linked, source.Issue.GetNumber())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return linked, nil
}

// GetFileContent fetches a file from a repository at an optional ref.
// Used for shared config inheritance and flat-file resources (spam
// list, mentor roster) hosted in the repository.
func (c *Client) GetFileContent(ctx context.Context, org, repo, path, ref string) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}

	file, _, _, err := c.client.Repositories.GetContents(ctx, org, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s is not a file", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}

// isNotFound reports whether err is a 404 from the API.
func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode == 404
	}
	return false
}

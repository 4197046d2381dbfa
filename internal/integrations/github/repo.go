package github

import (
	"context"

	"github.com/tiergh/tier-bot/internal/core/policy"
)

// RepoClient binds a Client to one repository, giving the policy
// engine the per-user views it consumes without threading owner/name
// through every call.
type RepoClient struct {
	client *Client
	org    string
	repo   string
}

// NewRepoClient scopes a client to org/repo.
func NewRepoClient(client *Client, org, repo string) *RepoClient {
	return &RepoClient{client: client, org: org, repo: repo}
}

// Role implements policy.RoleLookup.
func (r *RepoClient) Role(ctx context.Context, username string) (policy.Role, error) {
	return r.client.PermissionLevel(ctx, r.org, r.repo, username)
}

// CountOpenAssigned implements policy.AssignmentCounter.
func (r *RepoClient) CountOpenAssigned(ctx context.Context, username string) (int, error) {
	return r.client.CountOpenAssignedIssues(ctx, r.org, r.repo, username)
}

// MergedPullRequests implements policy.ContributionSource.
func (r *RepoClient) MergedPullRequests(ctx context.Context, username string) ([]policy.MergedPullRequest, error) {
	return r.client.MergedPullRequests(ctx, r.org, r.repo, username)
}

// LinkedClosingIssues implements policy.ContributionSource.
func (r *RepoClient) LinkedClosingIssues(ctx context.Context, prNumber int) ([]int, error) {
	return r.client.LinkedClosingIssues(ctx, r.org, r.repo, prNumber)
}

// IssueLabels implements policy.ContributionSource.
func (r *RepoClient) IssueLabels(ctx context.Context, issueNumber int) ([]string, error) {
	return r.client.IssueLabels(ctx, r.org, r.repo, issueNumber)
}

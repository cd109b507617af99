package gh

import (
	"context"
	"slices"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"

	"github.com/prwatch/prwatch/internal/types"
)

// API is the subset of GitHub operations the fetcher needs.
type API interface {
	ListOpenPullRequests(ctx context.Context, repo types.Repository) ([]*types.PullRequest, error)
	ListReviews(ctx context.Context, repo types.Repository, number int) ([]types.ReviewEvent, error)
	ListReviewComments(ctx context.Context, repo types.Repository, number int) ([]types.CommentEvent, error)
	ListIssueComments(ctx context.Context, repo types.Repository, number int) ([]types.CommentEvent, error)
}

// Fetcher retrieves the open pull requests of one repository, keeps only
// those authored by watched developers, and enriches each with its review
// history.
type Fetcher struct {
	api           API
	developers    []string
	includeDrafts bool
}

// NewFetcher creates a fetcher watching the given developer logins.
func NewFetcher(api API, developers []string, includeDrafts bool) *Fetcher {
	return &Fetcher{
		api:           api,
		developers:    developers,
		includeDrafts: includeDrafts,
	}
}

// Fetch returns the enriched pull requests of one repository. A failure to
// list pull requests is returned to the caller; a failure to enrich a
// single pull request leaves that PR with empty history and keeps it in
// the result.
func (f *Fetcher) Fetch(ctx context.Context, repo types.Repository) ([]*types.PullRequest, error) {
	logger := logging.GetLogger()
	logger.Debug(ctx, "Fetching PRs from %s", repo)

	prs, err := f.api.ListOpenPullRequests(ctx, repo)
	if err != nil {
		return nil, err
	}

	filtered := f.filter(ctx, prs, repo)
	for _, pr := range filtered {
		f.loadReviewHistory(ctx, pr)
	}
	return filtered, nil
}

func (f *Fetcher) filter(ctx context.Context, prs []*types.PullRequest, repo types.Repository) []*types.PullRequest {
	logger := logging.GetLogger()

	var filtered []*types.PullRequest
	for _, pr := range prs {
		if pr.IsDraft && !f.includeDrafts {
			continue
		}
		filtered = append(filtered, pr)
	}
	logger.Debug(ctx, "Found %d non-draft PRs in %s", len(filtered), repo)

	n := 0
	for _, pr := range filtered {
		if slices.Contains(f.developers, pr.Author) {
			filtered[n] = pr
			n++
		}
	}
	filtered = filtered[:n]
	logger.Debug(ctx, "Found %d PRs from watched developers in %s", len(filtered), repo)

	return filtered
}

// loadReviewHistory attaches reviews, line comments and issue comments to a
// pull request. Any failure leaves the history empty rather than dropping
// the PR from the report.
func (f *Fetcher) loadReviewHistory(ctx context.Context, pr *types.PullRequest) {
	logger := logging.GetLogger()
	logger.Debug(ctx, "Loading review data for %s", pr)

	pr.History = types.ReviewHistory{
		Reviews:  []types.ReviewEvent{},
		Comments: []types.CommentEvent{},
	}

	reviews, err := f.api.ListReviews(ctx, pr.Repo, pr.Number)
	if err != nil {
		logger.Error(ctx, "Error fetching reviews for %s: %v", pr, err)
		return
	}
	comments, err := f.api.ListReviewComments(ctx, pr.Repo, pr.Number)
	if err != nil {
		logger.Error(ctx, "Error fetching review comments for %s: %v", pr, err)
		return
	}
	issueComments, err := f.api.ListIssueComments(ctx, pr.Repo, pr.Number)
	if err != nil {
		logger.Error(ctx, "Error fetching issue comments for %s: %v", pr, err)
		return
	}

	pr.History.Reviews = append(pr.History.Reviews, reviews...)
	pr.History.Comments = append(pr.History.Comments, comments...)
	pr.History.Comments = append(pr.History.Comments, issueComments...)
	logger.Debug(ctx, "Loaded %d reviews and %d comments for %s",
		len(pr.History.Reviews), len(pr.History.Comments), pr)
}

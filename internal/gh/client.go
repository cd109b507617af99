// Package gh handles all interactions with the GitHub API: an authenticated
// client exposing the typed operations the rest of the codebase needs, a
// retrying gateway protecting every remote call, and the per-repository
// pull request fetcher.
package gh

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/prwatch/prwatch/internal/types"
)

// Client is the authenticated GitHub client. Every operation runs through
// the retry gateway.
type Client struct {
	gh      *github.Client
	gateway *Gateway
}

// NewClient creates an authenticated GitHub client.
func NewClient(token string, retryCount int, retryDelay time.Duration) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return &Client{
		gh:      github.NewClient(tc),
		gateway: NewGateway(retryCount, retryDelay),
	}
}

// VerifyAccess checks that the token is valid and can read the first
// configured repository. Failures surface as non-transient APIErrors
// before any fetch work starts.
func (c *Client) VerifyAccess(ctx context.Context, repo types.Repository) error {
	_, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		if resp != nil && resp.StatusCode == 401 {
			return &APIError{Op: "verify token", Attempts: 1, Err: fmt.Errorf("token unauthorized, check token permissions")}
		}
		return &APIError{Op: "verify token", Attempts: 1, Err: err}
	}
	_, resp, err = c.gh.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return &APIError{Op: "verify access", Attempts: 1, Err: fmt.Errorf("repository %s not found or token lacks access", repo)}
		}
		return &APIError{Op: "verify access", Attempts: 1, Err: err}
	}
	return nil
}

// ListOpenPullRequests retrieves every open pull request for a repository,
// following pagination. Review history is left empty for the fetcher to
// populate.
func (c *Client) ListOpenPullRequests(ctx context.Context, repo types.Repository) ([]*types.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*types.PullRequest
	for {
		var page []*github.PullRequest
		var resp *github.Response
		err := c.gateway.Do(ctx, fmt.Sprintf("list pull requests for %s", repo), func() error {
			var err error
			page, resp, err = c.gh.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, pr := range page {
			all = append(all, &types.PullRequest{
				Repo:        repo,
				Number:      pr.GetNumber(),
				Title:       pr.GetTitle(),
				Author:      pr.GetUser().GetLogin(),
				CreatedAt:   pr.GetCreatedAt().Time,
				URL:         pr.GetHTMLURL(),
				IsDraft:     pr.GetDraft(),
				Description: pr.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ListReviews retrieves all submitted reviews for a pull request.
func (c *Client) ListReviews(ctx context.Context, repo types.Repository, number int) ([]types.ReviewEvent, error) {
	opts := &github.ListOptions{PerPage: 100}

	var events []types.ReviewEvent
	for {
		var page []*github.PullRequestReview
		var resp *github.Response
		err := c.gateway.Do(ctx, fmt.Sprintf("list reviews for %s#%d", repo, number), func() error {
			var err error
			page, resp, err = c.gh.PullRequests.ListReviews(ctx, repo.Owner, repo.Name, number, opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, r := range page {
			events = append(events, types.ReviewEvent{
				Reviewer:    r.GetUser().GetLogin(),
				SubmittedAt: r.GetSubmittedAt().Time,
				State:       types.ReviewState(r.GetState()),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return events, nil
}

// ListReviewComments retrieves all line comments on a pull request.
func (c *Client) ListReviewComments(ctx context.Context, repo types.Repository, number int) ([]types.CommentEvent, error) {
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var events []types.CommentEvent
	for {
		var page []*github.PullRequestComment
		var resp *github.Response
		err := c.gateway.Do(ctx, fmt.Sprintf("list review comments for %s#%d", repo, number), func() error {
			var err error
			page, resp, err = c.gh.PullRequests.ListComments(ctx, repo.Owner, repo.Name, number, opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, cm := range page {
			events = append(events, types.CommentEvent{
				Author:    cm.GetUser().GetLogin(),
				CreatedAt: cm.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return events, nil
}

// ListIssueComments retrieves all issue-level comments on a pull request.
func (c *Client) ListIssueComments(ctx context.Context, repo types.Repository, number int) ([]types.CommentEvent, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var events []types.CommentEvent
	for {
		var page []*github.IssueComment
		var resp *github.Response
		err := c.gateway.Do(ctx, fmt.Sprintf("list issue comments for %s#%d", repo, number), func() error {
			var err error
			page, resp, err = c.gh.Issues.ListComments(ctx, repo.Owner, repo.Name, number, opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, cm := range page {
			events = append(events, types.CommentEvent{
				Author:    cm.GetUser().GetLogin(),
				CreatedAt: cm.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return events, nil
}

// ListChangedFiles retrieves the files touched by a pull request.
func (c *Client) ListChangedFiles(ctx context.Context, repo types.Repository, number int) ([]types.ChangedFile, error) {
	opts := &github.ListOptions{PerPage: 100}

	var files []types.ChangedFile
	for {
		var page []*github.CommitFile
		var resp *github.Response
		err := c.gateway.Do(ctx, fmt.Sprintf("list changed files for %s#%d", repo, number), func() error {
			var err error
			page, resp, err = c.gh.PullRequests.ListFiles(ctx, repo.Owner, repo.Name, number, opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, f := range page {
			files = append(files, types.ChangedFile{
				Filename:    f.GetFilename(),
				Status:      f.GetStatus(),
				Additions:   f.GetAdditions(),
				Deletions:   f.GetDeletions(),
				ContentsURL: f.GetContentsURL(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// GetRawDiff retrieves the unified diff of a pull request.
func (c *Client) GetRawDiff(ctx context.Context, repo types.Repository, number int) (string, error) {
	var diff string
	err := c.gateway.Do(ctx, fmt.Sprintf("fetch diff for %s#%d", repo, number), func() error {
		var err error
		diff, _, err = c.gh.PullRequests.GetRaw(ctx, repo.Owner, repo.Name, number, github.RawOptions{Type: github.Diff})
		return err
	})
	if err != nil {
		return "", err
	}
	return diff, nil
}

// GetFileContent retrieves the decoded content of a single file from the
// repository. This uses the GitHub API's GetContents endpoint.
func (c *Client) GetFileContent(ctx context.Context, repo types.Repository, path string) (string, error) {
	var content *github.RepositoryContent
	err := c.gateway.Do(ctx, fmt.Sprintf("fetch content of %s in %s", path, repo), func() error {
		var err error
		content, _, _, err = c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, &github.RepositoryContentGetOptions{})
		return err
	})
	if err != nil {
		return "", err
	}

	// content is nil for directories
	if content == nil {
		return "", fmt.Errorf("no content available for %s", path)
	}
	decoded, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode content of %s: %w", path, err)
	}
	return decoded, nil
}

// CreateReview posts a review comment with the given body on a pull request.
func (c *Client) CreateReview(ctx context.Context, repo types.Repository, number int, body string) error {
	review := &github.PullRequestReviewRequest{
		Body:  github.Ptr(body),
		Event: github.Ptr("COMMENT"),
	}
	return c.gateway.Do(ctx, fmt.Sprintf("post review on %s#%d", repo, number), func() error {
		_, _, err := c.gh.PullRequests.CreateReview(ctx, repo.Owner, repo.Name, number, review)
		return err
	})
}

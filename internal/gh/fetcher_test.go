package gh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prwatch/prwatch/internal/types"
)

type mockAPI struct {
	mock.Mock
}

var _ API = (*mockAPI)(nil)

func (m *mockAPI) ListOpenPullRequests(ctx context.Context, repo types.Repository) ([]*types.PullRequest, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.PullRequest), args.Error(1)
}

func (m *mockAPI) ListReviews(ctx context.Context, repo types.Repository, number int) ([]types.ReviewEvent, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ReviewEvent), args.Error(1)
}

func (m *mockAPI) ListReviewComments(ctx context.Context, repo types.Repository, number int) ([]types.CommentEvent, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CommentEvent), args.Error(1)
}

func (m *mockAPI) ListIssueComments(ctx context.Context, repo types.Repository, number int) ([]types.CommentEvent, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CommentEvent), args.Error(1)
}

func testRepo(t *testing.T) types.Repository {
	t.Helper()
	repo, err := types.NewRepository("org/svc")
	require.NoError(t, err)
	return repo
}

func TestFetchFiltersByDeveloperAndDraft(t *testing.T) {
	repo := testRepo(t)
	now := time.Now()

	api := new(mockAPI)
	api.On("ListOpenPullRequests", mock.Anything, repo).Return([]*types.PullRequest{
		{Repo: repo, Number: 1, Author: "alice", CreatedAt: now},
		{Repo: repo, Number: 2, Author: "bob", CreatedAt: now, IsDraft: true},
		{Repo: repo, Number: 3, Author: "carol", CreatedAt: now},
	}, nil)
	api.On("ListReviews", mock.Anything, repo, 1).Return([]types.ReviewEvent{}, nil)
	api.On("ListReviewComments", mock.Anything, repo, 1).Return([]types.CommentEvent{}, nil)
	api.On("ListIssueComments", mock.Anything, repo, 1).Return([]types.CommentEvent{}, nil)

	fetcher := NewFetcher(api, []string{"alice", "bob"}, false)
	prs, err := fetcher.Fetch(context.Background(), repo)

	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 1, prs[0].Number)
	assert.Equal(t, "alice", prs[0].Author)
	api.AssertExpectations(t)
}

func TestFetchKeepsDraftsWhenConfigured(t *testing.T) {
	repo := testRepo(t)

	api := new(mockAPI)
	api.On("ListOpenPullRequests", mock.Anything, repo).Return([]*types.PullRequest{
		{Repo: repo, Number: 2, Author: "bob", IsDraft: true},
	}, nil)
	api.On("ListReviews", mock.Anything, repo, 2).Return([]types.ReviewEvent{}, nil)
	api.On("ListReviewComments", mock.Anything, repo, 2).Return([]types.CommentEvent{}, nil)
	api.On("ListIssueComments", mock.Anything, repo, 2).Return([]types.CommentEvent{}, nil)

	fetcher := NewFetcher(api, []string{"bob"}, true)
	prs, err := fetcher.Fetch(context.Background(), repo)

	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.True(t, prs[0].IsDraft)
}

func TestFetchMergesReviewHistory(t *testing.T) {
	repo := testRepo(t)
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	api := new(mockAPI)
	api.On("ListOpenPullRequests", mock.Anything, repo).Return([]*types.PullRequest{
		{Repo: repo, Number: 7, Author: "alice", CreatedAt: created},
	}, nil)
	api.On("ListReviews", mock.Anything, repo, 7).Return([]types.ReviewEvent{
		{Reviewer: "bob", SubmittedAt: created.Add(3 * time.Hour), State: types.ReviewApproved},
	}, nil)
	api.On("ListReviewComments", mock.Anything, repo, 7).Return([]types.CommentEvent{
		{Author: "bob", CreatedAt: created.Add(time.Hour)},
	}, nil)
	api.On("ListIssueComments", mock.Anything, repo, 7).Return([]types.CommentEvent{
		{Author: "carol", CreatedAt: created.Add(2 * time.Hour)},
	}, nil)

	fetcher := NewFetcher(api, []string{"alice"}, false)
	prs, err := fetcher.Fetch(context.Background(), repo)

	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Len(t, prs[0].History.Reviews, 1)
	// Line comments and issue comments merge into one sequence.
	assert.Len(t, prs[0].History.Comments, 2)
}

func TestFetchEnrichmentFailureKeepsPRWithEmptyHistory(t *testing.T) {
	repo := testRepo(t)

	api := new(mockAPI)
	api.On("ListOpenPullRequests", mock.Anything, repo).Return([]*types.PullRequest{
		{Repo: repo, Number: 9, Author: "alice"},
	}, nil)
	api.On("ListReviews", mock.Anything, repo, 9).Return(nil, errors.New("boom"))

	fetcher := NewFetcher(api, []string{"alice"}, false)
	prs, err := fetcher.Fetch(context.Background(), repo)

	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.NotNil(t, prs[0].History.Reviews)
	assert.NotNil(t, prs[0].History.Comments)
	assert.Empty(t, prs[0].History.Reviews)
	assert.Empty(t, prs[0].History.Comments)
}

func TestFetchPropagatesListFailure(t *testing.T) {
	repo := testRepo(t)

	api := new(mockAPI)
	api.On("ListOpenPullRequests", mock.Anything, repo).Return(nil, &APIError{Op: "list", Attempts: 1, Err: errors.New("not found")})

	fetcher := NewFetcher(api, []string{"alice"}, false)
	_, err := fetcher.Fetch(context.Background(), repo)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

package aggregate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prwatch/prwatch/internal/types"
)

type fakeFetcher struct {
	prsByRepo map[string][]*types.PullRequest
	failing   map[string]bool
	calls     atomic.Int64
}

func (f *fakeFetcher) Fetch(ctx context.Context, repo types.Repository) ([]*types.PullRequest, error) {
	f.calls.Add(1)
	if f.failing[repo.FullName] {
		return nil, errors.New("retries exhausted")
	}
	return f.prsByRepo[repo.FullName], nil
}

func mustRepos(t *testing.T, names ...string) []types.Repository {
	t.Helper()
	repos := make([]types.Repository, 0, len(names))
	for _, n := range names {
		repo, err := types.NewRepository(n)
		require.NoError(t, err)
		repos = append(repos, repo)
	}
	return repos
}

func TestFetchAllMergesAcrossRepositories(t *testing.T) {
	repos := mustRepos(t, "org/a", "org/b", "org/c")
	fetcher := &fakeFetcher{
		prsByRepo: map[string][]*types.PullRequest{
			"org/a": {{Repo: repos[0], Number: 1}, {Repo: repos[0], Number: 2}},
			"org/b": {{Repo: repos[1], Number: 5}},
			"org/c": {},
		},
	}

	prs := FetchAll(context.Background(), fetcher, repos, 4)

	assert.Len(t, prs, 3)
	assert.Equal(t, int64(3), fetcher.calls.Load())
}

func TestFetchAllSkipsFailedRepository(t *testing.T) {
	repos := mustRepos(t, "org/a", "org/broken", "org/c")
	fetcher := &fakeFetcher{
		prsByRepo: map[string][]*types.PullRequest{
			"org/a": {{Repo: repos[0], Number: 1}},
			"org/c": {{Repo: repos[2], Number: 3}},
		},
		failing: map[string]bool{"org/broken": true},
	}

	prs := FetchAll(context.Background(), fetcher, repos, 2)

	// The failed repository is excluded; the run continues.
	require.Len(t, prs, 2)
	for _, pr := range prs {
		assert.NotEqual(t, "org/broken", pr.Repo.FullName)
	}
}

func TestFetchAllSequentialWhenSingleWorker(t *testing.T) {
	repos := mustRepos(t, "org/a", "org/b")
	fetcher := &fakeFetcher{
		prsByRepo: map[string][]*types.PullRequest{
			"org/a": {{Repo: repos[0], Number: 1}},
			"org/b": {{Repo: repos[1], Number: 2}},
		},
	}

	prs := FetchAll(context.Background(), fetcher, repos, 1)

	assert.Len(t, prs, 2)
}

func TestFetchAllClampsWorkerCount(t *testing.T) {
	repos := mustRepos(t, "org/a")
	fetcher := &fakeFetcher{
		prsByRepo: map[string][]*types.PullRequest{
			"org/a": {{Repo: repos[0], Number: 1}},
		},
	}

	assert.Len(t, FetchAll(context.Background(), fetcher, repos, 0), 1)
	assert.Len(t, FetchAll(context.Background(), fetcher, repos, 16), 1)
}

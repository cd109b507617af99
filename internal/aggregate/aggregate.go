// Package aggregate fans the per-repository fetcher out across all
// configured repositories under a bounded worker pool and merges the
// results.
package aggregate

import (
	"context"
	"sync"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"

	"github.com/prwatch/prwatch/internal/types"
)

// Fetcher retrieves the enriched pull requests of one repository.
type Fetcher interface {
	Fetch(ctx context.Context, repo types.Repository) ([]*types.PullRequest, error)
}

type repoResult struct {
	repo types.Repository
	prs  []*types.PullRequest
	err  error
}

// FetchAll runs the fetcher for every repository using up to workers
// concurrent goroutines (a worker count of 1 degrades to strictly
// sequential execution). A repository whose fetch fails is logged and
// excluded; the remaining repositories still contribute results. No
// ordering is guaranteed across repositories.
func FetchAll(ctx context.Context, fetcher Fetcher, repos []types.Repository, workers int) []*types.PullRequest {
	logger := logging.GetLogger()
	if workers < 1 {
		workers = 1
	}
	if workers > len(repos) {
		workers = len(repos)
	}
	logger.Info(ctx, "Fetching PRs from %d repositories using %d workers", len(repos), workers)

	repoCh := make(chan types.Repository, len(repos))
	resultCh := make(chan repoResult, len(repos))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for repo := range repoCh {
				prs, err := fetcher.Fetch(ctx, repo)
				resultCh <- repoResult{repo: repo, prs: prs, err: err}
			}
		}()
	}

	for _, repo := range repos {
		repoCh <- repo
	}
	close(repoCh)

	// Gather-then-merge; no partial pull request is visible mid-fetch.
	var all []*types.PullRequest
	for i := 0; i < len(repos); i++ {
		result := <-resultCh
		if result.err != nil {
			logger.Error(ctx, "Error fetching PRs for %s: %v", result.repo, result.err)
			continue
		}
		all = append(all, result.prs...)
	}

	wg.Wait()
	close(resultCh)

	return all
}

package review

import (
	"context"
	"sync"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"

	"github.com/prwatch/prwatch/internal/types"
)

// Reviewer reviews one pull request.
type Reviewer interface {
	Review(ctx context.Context, pr *types.PullRequest, selectedFiles []string) (*types.PostedReviewResult, error)
}

// ReviewAll fans the reviewer out over the selected pull requests with at
// most min(concurrency, len(prs)) workers. Each pull request's review
// succeeds or fails independently; failures are logged and excluded from
// the returned results, and never cancel sibling work.
func ReviewAll(ctx context.Context, reviewer Reviewer, prs []*types.PullRequest, concurrency int) []*types.PostedReviewResult {
	logger := logging.GetLogger()
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(prs) {
		concurrency = len(prs)
	}

	prCh := make(chan *types.PullRequest, len(prs))
	resultCh := make(chan *types.PostedReviewResult, len(prs))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pr := range prCh {
				result, err := reviewer.Review(ctx, pr, nil)
				if err != nil {
					logger.Error(ctx, "Error during AI review: %v", err)
					resultCh <- nil
					continue
				}
				resultCh <- result
			}
		}()
	}

	for _, pr := range prs {
		prCh <- pr
	}
	close(prCh)

	var results []*types.PostedReviewResult
	for i := 0; i < len(prs); i++ {
		if result := <-resultCh; result != nil {
			results = append(results, result)
		}
	}

	wg.Wait()
	close(resultCh)

	return results
}

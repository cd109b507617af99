package gh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/google/go-github/v68/github"
)

// APIError wraps a failed GitHub API operation. Transient failures have
// already been retried by the time this error surfaces; non-transient ones
// (bad credentials, missing resource) are never retried.
type APIError struct {
	Op        string
	Attempts  int
	Transient bool
	Err       error
}

func (e *APIError) Error() string {
	if e.Transient {
		return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Op, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Gateway wraps a single GitHub API call with bounded retry and linear
// backoff. Sleeps happen on the calling goroutine only.
type Gateway struct {
	retryCount int
	retryDelay time.Duration
	sleep      func(time.Duration)
}

// NewGateway returns a gateway that retries transient failures up to
// retryCount additional times, sleeping retryDelay × attempt between tries.
func NewGateway(retryCount int, retryDelay time.Duration) *Gateway {
	return &Gateway{
		retryCount: retryCount,
		retryDelay: retryDelay,
		sleep:      time.Sleep,
	}
}

// Do runs one remote call. Non-transient failures propagate immediately;
// transient ones are retried until the attempt budget is exhausted, at
// which point the last failure is returned as a transient APIError.
func (g *Gateway) Do(ctx context.Context, op string, call func() error) error {
	logger := logging.GetLogger()

	var lastErr error
	for attempt := 1; attempt <= g.retryCount+1; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return &APIError{Op: op, Attempts: attempt, Transient: false, Err: err}
		}
		lastErr = err
		if attempt <= g.retryCount {
			delay := g.retryDelay * time.Duration(attempt)
			logger.Warn(ctx, "API error on %s: %v. Retry %d/%d in %s", op, err, attempt, g.retryCount, delay)
			g.sleep(delay)
		}
	}
	return &APIError{Op: op, Attempts: g.retryCount + 1, Transient: true, Err: lastErr}
}

// isTransient reports whether a failure is likely to succeed on retry.
// Rate limits and 5xx responses are transient; auth failures, missing
// resources and other 4xx responses are not. Anything that never reached
// the API (network blip) is assumed transient.
func isTransient(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		if respErr.Response == nil {
			return true
		}
		return respErr.Response.StatusCode >= 500
	}
	return true
}

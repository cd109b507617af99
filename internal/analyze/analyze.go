// Package analyze computes per-reviewer feedback status and delay for a
// pull request. It depends only on the data model and performs no I/O.
package analyze

import (
	"math"
	"time"

	"github.com/prwatch/prwatch/internal/types"
)

const secondsPerDay = 60 * 60 * 24

// AnalyzePR returns one feedback result per watched developer, excluding
// the pull request's own author.
//
// A reviewer's latest review is authoritative once any review exists; only
// in its absence does the earliest comment count, as evidence of first
// engagement. Reviewers with neither are pending.
func AnalyzePR(pr *types.PullRequest, developers []string) []types.FeedbackResult {
	var results []types.FeedbackResult
	for _, reviewer := range developers {
		if reviewer == pr.Author {
			continue
		}
		results = append(results, analyzeReviewer(pr, reviewer))
	}
	return results
}

func analyzeReviewer(pr *types.PullRequest, reviewer string) types.FeedbackResult {
	if review, ok := latestReview(pr, reviewer); ok {
		delay := delayDays(pr, review.SubmittedAt)
		return types.FeedbackResult{
			Reviewer:   reviewer,
			DelayDays:  &delay,
			Status:     statusFromState(review.State),
			SourceType: types.SourceReview,
		}
	}

	if comment, ok := earliestComment(pr, reviewer); ok {
		delay := delayDays(pr, comment.CreatedAt)
		return types.FeedbackResult{
			Reviewer:   reviewer,
			DelayDays:  &delay,
			Status:     types.FeedbackCommented,
			SourceType: types.SourceComment,
		}
	}

	return types.FeedbackResult{
		Reviewer:   reviewer,
		Status:     types.FeedbackPending,
		SourceType: types.SourceNone,
	}
}

// latestReview picks the reviewer's review with the maximum SubmittedAt.
// Equal timestamps keep the earlier entry in input order, so the choice is
// deterministic.
func latestReview(pr *types.PullRequest, reviewer string) (types.ReviewEvent, bool) {
	var latest types.ReviewEvent
	found := false
	for _, ev := range pr.History.Reviews {
		if ev.Reviewer != reviewer {
			continue
		}
		if !found || latest.SubmittedAt.Before(ev.SubmittedAt) {
			latest = ev
			found = true
		}
	}
	return latest, found
}

// earliestComment picks the reviewer's comment with the minimum CreatedAt.
func earliestComment(pr *types.PullRequest, reviewer string) (types.CommentEvent, bool) {
	var earliest types.CommentEvent
	found := false
	for _, ev := range pr.History.Comments {
		if ev.Author != reviewer {
			continue
		}
		if !found || ev.CreatedAt.Before(earliest.CreatedAt) {
			earliest = ev
			found = true
		}
	}
	return earliest, found
}

// delayDays is the elapsed time between PR creation and the feedback
// event, in days rounded to 2 decimal places.
func delayDays(pr *types.PullRequest, at time.Time) float64 {
	days := at.Sub(pr.CreatedAt).Seconds() / secondsPerDay
	return math.Round(days*100) / 100
}

func statusFromState(state types.ReviewState) types.FeedbackStatus {
	switch state {
	case types.ReviewApproved:
		return types.FeedbackApproved
	case types.ReviewChangesRequested:
		return types.FeedbackChangesRequested
	default:
		return types.FeedbackCommented
	}
}

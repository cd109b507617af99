// Package types contains the shared pull request domain types used across
// the prwatch codebase. This package has NO internal dependencies and serves
// as the foundation for the fetch, analysis and review packages.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Repository identifies a GitHub repository by its owner and name.
// Identity is the full "owner/name" string.
type Repository struct {
	Owner    string
	Name     string
	FullName string
}

// NewRepository parses a configured "owner/name" string.
func NewRepository(fullName string) (Repository, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return Repository{}, fmt.Errorf("invalid repository %q: expected owner/name", fullName)
	}
	return Repository{Owner: owner, Name: name, FullName: fullName}, nil
}

func (r Repository) String() string {
	return r.FullName
}

// ReviewState is a reviewer's formal verdict on a pull request.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
)

// ReviewEvent is a single submitted review.
type ReviewEvent struct {
	Reviewer    string
	SubmittedAt time.Time
	State       ReviewState
}

// CommentEvent is a unified view over line comments and issue-level
// comments. Only the earliest comment per author matters downstream.
type CommentEvent struct {
	Author    string
	CreatedAt time.Time
}

// ReviewHistory holds the review and comment events of one pull request.
// Sequences are never nil; enrichment failure leaves them empty.
type ReviewHistory struct {
	Reviews  []ReviewEvent
	Comments []CommentEvent
}

// PullRequest is an open pull request enriched with its review history.
// Identity (Repo, Number) never changes after creation.
type PullRequest struct {
	Repo        Repository
	Number      int
	Title       string
	Author      string
	CreatedAt   time.Time
	URL         string
	IsDraft     bool
	Description string
	History     ReviewHistory
}

// DaysOpen reports how many whole days the pull request has been open,
// recomputed on every read.
func (pr *PullRequest) DaysOpen(now time.Time) int {
	return int(now.Sub(pr.CreatedAt).Hours() / 24)
}

func (pr *PullRequest) String() string {
	return fmt.Sprintf("%s#%d", pr.Repo.FullName, pr.Number)
}

// FeedbackStatus describes a watched reviewer's current stance on a PR.
type FeedbackStatus string

const (
	FeedbackPending          FeedbackStatus = "pending"
	FeedbackApproved         FeedbackStatus = "approved"
	FeedbackChangesRequested FeedbackStatus = "changes_requested"
	FeedbackCommented        FeedbackStatus = "commented"
)

// FeedbackSource names which kind of event produced a feedback result.
type FeedbackSource string

const (
	SourceReview  FeedbackSource = "review"
	SourceComment FeedbackSource = "comment"
	SourceNone    FeedbackSource = "none"
)

// FeedbackResult is the derived per-(PR, reviewer) feedback outcome.
// DelayDays is nil while the reviewer has not responded at all.
type FeedbackResult struct {
	Reviewer   string
	DelayDays  *float64
	Status     FeedbackStatus
	SourceType FeedbackSource
}

// ChangedFile describes one file touched by a pull request.
type ChangedFile struct {
	Filename    string
	Status      string
	Additions   int
	Deletions   int
	ContentsURL string
}

// AIReviewResult is the generated review text for one template.
type AIReviewResult struct {
	TemplateName  string
	GeneratedText string
}

// PostedReviewResult records the outcome of one AI review attempt.
type PostedReviewResult struct {
	PR        *PullRequest
	Templates []string
	Posted    bool
}

// Package report renders the aggregated pull requests as a human-readable
// feedback report, colorized on the terminal or written plain to a file.
package report

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/logrusorgru/aurora"

	"github.com/prwatch/prwatch/internal/analyze"
	"github.com/prwatch/prwatch/internal/types"
)

// Reporter formats analyzed pull requests for humans.
type Reporter struct {
	repos      []types.Repository
	developers []string
	outputFile string
}

// NewReporter creates a reporter for the watched repositories and
// developers. When outputFile is non-empty the report is written there in
// plain text instead of being printed.
func NewReporter(repos []types.Repository, developers []string, outputFile string) *Reporter {
	return &Reporter{
		repos:      repos,
		developers: developers,
		outputFile: outputFile,
	}
}

// Generate renders the report, sorted by days open descending.
func (r *Reporter) Generate(ctx context.Context, prs []*types.PullRequest) error {
	logger := logging.GetLogger()

	if r.outputFile != "" {
		report := r.render(prs, time.Now(), false)
		if err := os.WriteFile(r.outputFile, []byte(report), 0644); err != nil {
			return fmt.Errorf("failed to write report to %s: %w", r.outputFile, err)
		}
		logger.Info(ctx, "Report saved to %s", r.outputFile)
		return nil
	}

	fmt.Print(r.render(prs, time.Now(), true))
	return nil
}

func (r *Reporter) render(prs []*types.PullRequest, now time.Time, colored bool) string {
	var sb strings.Builder

	sorted := make([]*types.PullRequest, len(prs))
	copy(sorted, prs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DaysOpen(now) > sorted[j].DaysOpen(now)
	})

	r.renderSummary(&sb, sorted, now, colored)
	for _, pr := range sorted {
		r.renderPR(&sb, pr, now, colored)
	}
	return sb.String()
}

func (r *Reporter) renderSummary(sb *strings.Builder, prs []*types.PullRequest, now time.Time, colored bool) {
	sb.WriteString(paint("Summary:", colored, aurora.Bold) + "\n")
	noun := "pull requests"
	if len(prs) == 1 {
		noun = "pull request"
	}
	sb.WriteString(paint(fmt.Sprintf("Found %d open %s from watched developers", len(prs), noun), colored, aurora.Cyan) + "\n")

	sb.WriteString("\n" + paint("PRs by Repository:", colored, aurora.Bold) + "\n")
	for _, repo := range r.repos {
		count := 0
		for _, pr := range prs {
			if pr.Repo.FullName == repo.FullName {
				count++
			}
		}
		if count > 0 {
			sb.WriteString(paint(fmt.Sprintf("  %s: %d", repo, count), colored, aurora.Cyan) + "\n")
		}
	}

	sb.WriteString("\n" + paint("PRs by Developer:", colored, aurora.Bold) + "\n")
	for _, dev := range r.developers {
		count := 0
		for _, pr := range prs {
			if pr.Author == dev {
				count++
			}
		}
		if count > 0 {
			sb.WriteString(paint(fmt.Sprintf("  %s: %d", dev, count), colored, aurora.Cyan) + "\n")
		}
	}

	var stale []*types.PullRequest
	for _, pr := range prs {
		if pr.DaysOpen(now) > 30 {
			stale = append(stale, pr)
		}
	}
	if len(stale) > 0 {
		sb.WriteString("\n" + paint("PRs older than 30 days:", colored, aurora.Yellow) + "\n")
		for _, pr := range stale {
			sb.WriteString(paint(fmt.Sprintf("  %s (%d days old)", pr, pr.DaysOpen(now)), colored, aurora.Yellow) + "\n")
		}
	}

	sb.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
}

func (r *Reporter) renderPR(sb *strings.Builder, pr *types.PullRequest, now time.Time, colored bool) {
	header := paint(fmt.Sprintf("%s: %s", pr.Repo, pr.Title), colored, aurora.Blue) +
		paint(fmt.Sprintf(" by %s", pr.Author), colored, aurora.Green) +
		paint(fmt.Sprintf(" (%s)", formatTimeOpen(pr.DaysOpen(now))), colored, aurora.Yellow)
	sb.WriteString(header + "\n")

	for _, feedback := range analyze.AnalyzePR(pr, r.developers) {
		sb.WriteString(formatFeedback(feedback, colored) + "\n")
	}

	sb.WriteString(paint(fmt.Sprintf("  URL: %s", pr.URL), colored, aurora.Cyan) + "\n")
	sb.WriteString(strings.Repeat("-", 50) + "\n\n")
}

func formatFeedback(feedback types.FeedbackResult, colored bool) string {
	prefix := fmt.Sprintf("  • %s: ", feedback.Reviewer)
	switch feedback.Status {
	case types.FeedbackApproved:
		return prefix + paint("approved "+formatDelay(feedback.DelayDays), colored, aurora.Green)
	case types.FeedbackChangesRequested:
		return prefix + paint("requested changes "+formatDelay(feedback.DelayDays), colored, aurora.Red)
	case types.FeedbackCommented:
		return prefix + paint("commented "+formatDelay(feedback.DelayDays), colored, aurora.Yellow)
	default:
		return prefix + paint("pending review", colored, aurora.Red)
	}
}

func formatTimeOpen(days int) string {
	switch days {
	case 0:
		return "opened today"
	case 1:
		return "opened yesterday"
	default:
		return fmt.Sprintf("open for %d days", days)
	}
}

func formatDelay(days *float64) string {
	if days == nil {
		return ""
	}
	switch int(math.Round(*days)) {
	case 0:
		return "today"
	case 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", int(math.Round(*days)))
	}
}

func paint(s string, colored bool, color func(interface{}) aurora.Value) string {
	if !colored {
		return s
	}
	return color(s).String()
}

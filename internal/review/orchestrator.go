package review

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"

	"github.com/prwatch/prwatch/internal/config"
	"github.com/prwatch/prwatch/internal/types"
)

// GitHub is the subset of GitHub operations the AI review needs.
type GitHub interface {
	ListChangedFiles(ctx context.Context, repo types.Repository, number int) ([]types.ChangedFile, error)
	GetRawDiff(ctx context.Context, repo types.Repository, number int) (string, error)
	GetFileContent(ctx context.Context, repo types.Repository, path string) (string, error)
	CreateReview(ctx context.Context, repo types.Repository, number int, body string) error
}

// Orchestrator runs the AI review of a single pull request: it fetches the
// changed files, selects templates, generates one review per template and
// posts the combined comment.
type Orchestrator struct {
	gh           GitHub
	provider     Provider
	providerName string
	model        string
	templates    map[string]string
}

// NewOrchestrator validates the AI-review configuration and builds the
// provider client. Misconfiguration surfaces here, before any review runs.
func NewOrchestrator(cfg config.AIReview, gh GitHub) (*Orchestrator, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		gh:           gh,
		provider:     provider,
		providerName: cfg.Provider,
		model:        ModelName(cfg),
		templates:    Templates(cfg.Templates),
	}, nil
}

// Review generates and posts a review comment for one pull request. When
// selectedFiles is non-nil the review is restricted to those files and the
// prompt embeds their full contents instead of the unified diff.
func (o *Orchestrator) Review(ctx context.Context, pr *types.PullRequest, selectedFiles []string) (*types.PostedReviewResult, error) {
	logger := logging.GetLogger()
	logger.Info(ctx, "Starting AI review for %s", pr)

	files, err := o.gh.ListChangedFiles(ctx, pr.Repo, pr.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files for %s: %w", pr, err)
	}
	if selectedFiles != nil {
		files = slices.DeleteFunc(files, func(f types.ChangedFile) bool {
			return !slices.Contains(selectedFiles, f.Filename)
		})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no reviewable files in %s", pr)
	}

	categories := CategorizeFiles(files)
	templateNames := DetermineTemplates(files)

	diff, err := o.assembleDiff(ctx, pr, files, selectedFiles != nil)
	if err != nil {
		return nil, err
	}

	results := make([]types.AIReviewResult, 0, len(templateNames))
	for _, name := range templateNames {
		prompt := BuildPrompt(o.templates, name, pr, files, diff)
		text, err := o.provider.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("%s template review of %s: %w", name, pr, err)
		}
		results = append(results, types.AIReviewResult{TemplateName: name, GeneratedText: text})
	}

	body := o.composeComment(results, categories[CategorySecuritySensitive])
	if err := o.gh.CreateReview(ctx, pr.Repo, pr.Number, body); err != nil {
		return nil, fmt.Errorf("failed to post review on %s: %w", pr, err)
	}

	logger.Info(ctx, "AI review completed for %s", pr)
	return &types.PostedReviewResult{PR: pr, Templates: templateNames, Posted: true}, nil
}

// assembleDiff produces the code-change text embedded in prompts: the
// unified diff by default, or each selected file's decoded content with a
// filename header in per-file mode. The result is always truncated.
func (o *Orchestrator) assembleDiff(ctx context.Context, pr *types.PullRequest, files []types.ChangedFile, perFile bool) (string, error) {
	if !perFile {
		diff, err := o.gh.GetRawDiff(ctx, pr.Repo, pr.Number)
		if err != nil {
			return "", fmt.Errorf("failed to fetch diff for %s: %w", pr, err)
		}
		return Truncate(diff), nil
	}

	sections := make([]string, 0, len(files))
	for _, f := range files {
		content, err := o.gh.GetFileContent(ctx, pr.Repo, f.Filename)
		if err != nil {
			return "", fmt.Errorf("failed to fetch content of %s for %s: %w", f.Filename, pr, err)
		}
		sections = append(sections, fmt.Sprintf("File: %s\n%s", f.Filename, content))
	}
	return Truncate(strings.Join(sections, "\n\n")), nil
}

// composeComment builds the posted Markdown body: header and metadata, an
// optional security-sensitive-files warning, one section per template and
// the disclaimer footer.
func (o *Orchestrator) composeComment(results []types.AIReviewResult, sensitive []types.ChangedFile) string {
	var sb strings.Builder

	sb.WriteString("# 🤖 AI Code Review\n\n")
	sb.WriteString(fmt.Sprintf("_Generated at %s_\n", time.Now().UTC().Format("2006-01-02 15:04 UTC")))
	sb.WriteString(fmt.Sprintf("_Using %s (%s)_\n\n", o.providerName, o.model))

	if len(sensitive) > 0 {
		sb.WriteString("⚠️ **Security-Sensitive Files Modified**\n")
		sb.WriteString("Please pay extra attention to these changes:\n")
		for _, f := range sensitive {
			sb.WriteString("- " + f.Filename + "\n")
		}
		sb.WriteString("\n")
	}

	for _, result := range results {
		sb.WriteString(fmt.Sprintf("## %s Review\n\n%s\n\n", capitalize(result.TemplateName), result.GeneratedText))
	}

	sb.WriteString("---\n")
	sb.WriteString("This is an automated review. Please verify all suggestions before implementing.\n")
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

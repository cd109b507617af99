package review

import (
	"fmt"
	"strings"

	"github.com/prwatch/prwatch/internal/types"
)

// MaxPromptInputLength bounds the diff or file content embedded in a
// prompt, to bound provider cost and latency. Oversized input is cut and
// marked, never sent whole.
const MaxPromptInputLength = 12000

const truncationMarker = "\n... (truncated for length)"

const standardReviewSection = `Files changed:
{{files_changed}}

Code changes:
{{diff}}

Please structure your review as follows:
1. Summary (2-3 sentences)
2. Key Observations
3. Potential Issues
4. Recommendations
5. Code-specific comments (if any)`

var builtinTemplates = map[string]string{
	"default": `You are an expert code reviewer. Please review this Pull Request focusing on:
1. Code correctness and potential bugs
2. Security implications
3. Performance considerations
4. Best practices and coding standards
5. Suggestions for improvement

PR title: {{pr_title}}
PR description: {{pr_description}}

{{standard_review_section}}`,

	"ruby": `You are reviewing a Ruby codebase. Focus on:
1. Ruby idioms and best practices
2. Performance implications
3. Gem usage and compatibility
4. Security considerations
5. Test coverage

PR title: {{pr_title}}
PR description: {{pr_description}}

{{standard_review_section}}`,

	"javascript": `You are reviewing a JavaScript/TypeScript codebase. Focus on:
1. Modern language idioms and type safety
2. Asynchronous control flow and error handling
3. Dependency and bundle impact
4. Security considerations (XSS, injection, unsafe eval)
5. Test coverage

PR title: {{pr_title}}
PR description: {{pr_description}}

{{standard_review_section}}`,

	"database": `You are reviewing database changes (migrations, schema, SQL). Focus on:
1. Migration safety and reversibility
2. Index usage and query performance
3. Data integrity and constraints
4. Locking behavior on large tables
5. Backwards compatibility with running code

PR title: {{pr_title}}
PR description: {{pr_description}}

{{standard_review_section}}`,
}

// Templates returns the effective template set: the built-in skeletons
// with any configured overrides applied on top.
func Templates(overrides map[string]string) map[string]string {
	templates := make(map[string]string, len(builtinTemplates))
	for name, tmpl := range builtinTemplates {
		templates[name] = tmpl
	}
	for name, tmpl := range overrides {
		templates[name] = tmpl
	}
	return templates
}

// Truncate cuts text exceeding MaxPromptInputLength and appends the
// truncation marker.
func Truncate(text string) string {
	if len(text) <= MaxPromptInputLength {
		return text
	}
	return text[:MaxPromptInputLength] + truncationMarker
}

// BuildPrompt resolves a template's placeholders against the pull request,
// its changed files and the (already truncated) diff text. Unknown
// template names fall back to the default skeleton.
func BuildPrompt(templates map[string]string, name string, pr *types.PullRequest, files []types.ChangedFile, diff string) string {
	tmpl, ok := templates[name]
	if !ok {
		tmpl = templates["default"]
	}

	tmpl = strings.ReplaceAll(tmpl, "{{standard_review_section}}", standardReviewSection)

	description := pr.Description
	if description == "" {
		description = "No description provided"
	}

	replacer := strings.NewReplacer(
		"{{files_changed}}", formatFilesList(files),
		"{{diff}}", diff,
		"{{pr_title}}", pr.Title,
		"{{pr_description}}", description,
	)
	return replacer.Replace(tmpl)
}

func formatFilesList(files []types.ChangedFile) string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s (%s, +%d/-%d)", f.Filename, f.Status, f.Additions, f.Deletions))
	}
	return strings.Join(lines, "\n")
}

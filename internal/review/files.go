// Package review implements the AI code-review pipeline: changed-file
// categorization, template selection, prompt construction, provider
// dispatch and posting of the combined review comment.
package review

import (
	"regexp"

	"github.com/prwatch/prwatch/internal/types"
)

// FileCategory classifies a changed file by filename pattern. A file may
// belong to any number of categories.
type FileCategory string

const (
	CategoryRuby              FileCategory = "ruby"
	CategoryJavaScript        FileCategory = "javascript"
	CategoryDatabase          FileCategory = "database"
	CategorySecuritySensitive FileCategory = "security_sensitive"
	CategoryTest              FileCategory = "test"
)

var categoryPatterns = []struct {
	category FileCategory
	pattern  *regexp.Regexp
}{
	{CategoryRuby, regexp.MustCompile(`\.(rb|rake)$`)},
	{CategoryJavaScript, regexp.MustCompile(`\.(js|jsx|ts|tsx)$`)},
	{CategoryDatabase, regexp.MustCompile(`db/migrate|schema\.rb|_spec\.rb|\.sql$`)},
	{CategorySecuritySensitive, regexp.MustCompile(`(?i)/(auth|login|password|token|secret|credential)`)},
	{CategoryTest, regexp.MustCompile(`_spec\.rb|_test\.rb|\.test\.js|\.spec\.js$`)},
}

// CategorizeFiles assigns each changed file to every category whose
// pattern matches its filename. Categorization never short-circuits.
func CategorizeFiles(files []types.ChangedFile) map[FileCategory][]types.ChangedFile {
	categories := make(map[FileCategory][]types.ChangedFile)
	for _, file := range files {
		for _, cp := range categoryPatterns {
			if cp.pattern.MatchString(file.Filename) {
				categories[cp.category] = append(categories[cp.category], file)
			}
		}
	}
	return categories
}

// DetermineTemplates selects which review templates apply to a changed
// file set. The default template is always included; language and database
// templates are added when any file matches the respective category.
func DetermineTemplates(files []types.ChangedFile) []string {
	categories := CategorizeFiles(files)
	templates := []string{"default"}

	if len(categories[CategoryRuby]) > 0 {
		templates = append(templates, "ruby")
	}
	if len(categories[CategoryJavaScript]) > 0 {
		templates = append(templates, "javascript")
	}
	if len(categories[CategoryDatabase]) > 0 {
		templates = append(templates, "database")
	}
	return templates
}

package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prwatch/prwatch/internal/types"
)

func changed(names ...string) []types.ChangedFile {
	files := make([]types.ChangedFile, 0, len(names))
	for _, n := range names {
		files = append(files, types.ChangedFile{Filename: n, Status: "modified"})
	}
	return files
}

func TestCategorizeFilesMultipleCategories(t *testing.T) {
	categories := CategorizeFiles(changed("app/controllers/auth_controller.rb"))

	assert.Len(t, categories[CategoryRuby], 1)
	assert.Len(t, categories[CategorySecuritySensitive], 1)
	assert.Empty(t, categories[CategoryJavaScript])
}

func TestCategorizeFiles(t *testing.T) {
	tests := []struct {
		filename string
		want     []FileCategory
	}{
		{"app/models/user.rb", []FileCategory{CategoryRuby}},
		{"lib/tasks/cleanup.rake", []FileCategory{CategoryRuby}},
		{"frontend/app.ts", []FileCategory{CategoryJavaScript}},
		{"src/widget.jsx", []FileCategory{CategoryJavaScript}},
		{"db/migrate/20260801_add_users.rb", []FileCategory{CategoryRuby, CategoryDatabase}},
		{"db/schema.rb", []FileCategory{CategoryRuby, CategoryDatabase}},
		{"queries/report.sql", []FileCategory{CategoryDatabase}},
		{"spec/models/user_spec.rb", []FileCategory{CategoryRuby, CategoryDatabase, CategoryTest}},
		{"src/api.test.js", []FileCategory{CategoryJavaScript, CategoryTest}},
		{"config/secrets/keys.yml", []FileCategory{CategorySecuritySensitive}},
		{"app/services/Login/handler.rb", []FileCategory{CategoryRuby, CategorySecuritySensitive}},
		{"README.md", nil},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			categories := CategorizeFiles(changed(tt.filename))
			var got []FileCategory
			for _, cp := range categoryPatterns {
				if len(categories[cp.category]) > 0 {
					got = append(got, cp.category)
				}
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestDetermineTemplates(t *testing.T) {
	templates := DetermineTemplates(changed("app/models/user.rb", "frontend/app.ts"))

	assert.ElementsMatch(t, []string{"default", "ruby", "javascript"}, templates)
}

func TestDetermineTemplatesAlwaysIncludesDefault(t *testing.T) {
	assert.Equal(t, []string{"default"}, DetermineTemplates(changed("README.md")))
	assert.Equal(t, []string{"default"}, DetermineTemplates(nil))
}

func TestDetermineTemplatesSecurityAddsNoTemplate(t *testing.T) {
	// Security-sensitive files trigger a warning block, not a template.
	templates := DetermineTemplates(changed("app/auth/token_store.go"))

	assert.Equal(t, []string{"default"}, templates)
}

func TestDetermineTemplatesDatabase(t *testing.T) {
	templates := DetermineTemplates(changed("db/migrate/001_init.sql"))

	assert.ElementsMatch(t, []string{"default", "database"}, templates)
}

// Package config loads prwatch configuration from a YAML file and the
// environment, applies typed defaults and validates the result before any
// network I/O starts.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/prwatch/prwatch/internal/types"
)

// ConfigurationError is fatal: the run aborts before any fetch begins.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ProviderSettings carries one AI provider's credential and model.
type ProviderSettings struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// AIReview configures the optional AI code-review capability.
type AIReview struct {
	Enabled           bool              `mapstructure:"enabled"`
	Provider          string            `mapstructure:"provider"`
	ConcurrentReviews int               `mapstructure:"concurrent_reviews"`
	OpenAI            ProviderSettings  `mapstructure:"openai"`
	Claude            ProviderSettings  `mapstructure:"claude"`
	Templates         map[string]string `mapstructure:"templates"`
}

// Config is the flat, validated set of options the rest of the codebase
// consumes. It is resolved once at startup and never mutated.
type Config struct {
	Token           string   `mapstructure:"token"`
	Repos           []string `mapstructure:"repos"`
	Developers      []string `mapstructure:"developers"`
	IncludeDrafts   bool     `mapstructure:"include_drafts"`
	RetryCount      int      `mapstructure:"retry_count"`
	RetryDelay      int      `mapstructure:"retry_delay"`
	LogLevel        string   `mapstructure:"log_level"`
	ParallelThreads int      `mapstructure:"parallel_threads"`
	OutputFile      string   `mapstructure:"output_file"`
	AIReview        AIReview `mapstructure:"ai_review"`
}

// Load reads the YAML configuration file, overlays environment values and
// validates the result.
func Load(path string) (*Config, error) {
	if envMap, err := godotenv.Read(".env"); err == nil {
		for k, v := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, v)
			}
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("configuration file not found: %s", path)}
		}
		return nil, &ConfigurationError{Reason: fmt.Sprintf("failed to read %s: %v", path, err)}
	}

	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unmarshal config: %v", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("include_drafts", false)
	v.SetDefault("retry_count", 3)
	v.SetDefault("retry_delay", 2)
	v.SetDefault("log_level", "info")
	v.SetDefault("parallel_threads", 4)

	v.SetDefault("ai_review.enabled", false)
	v.SetDefault("ai_review.provider", "openai")
	v.SetDefault("ai_review.concurrent_reviews", 3)
	v.SetDefault("ai_review.openai.model", "gpt-4o-mini")
	v.SetDefault("ai_review.claude.model", "claude-sonnet-4-5-20250929")
}

func bindEnvs(v *viper.Viper) {
	_ = v.BindEnv("token", "GITHUB_TOKEN")
	_ = v.BindEnv("ai_review.openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("ai_review.claude.api_key", "ANTHROPIC_API_KEY")
}

// Validate checks the options that must be present before any fetch.
func (c *Config) Validate() error {
	if c.Token == "" {
		return &ConfigurationError{Reason: "GitHub token not found: set token in config or GITHUB_TOKEN"}
	}
	if len(c.Repos) == 0 {
		return &ConfigurationError{Reason: "no repositories specified"}
	}
	if len(c.Developers) == 0 {
		return &ConfigurationError{Reason: "no developers specified"}
	}
	if _, err := c.Repositories(); err != nil {
		return err
	}
	return nil
}

// Repositories parses the configured owner/name strings.
func (c *Config) Repositories() ([]types.Repository, error) {
	repos := make([]types.Repository, 0, len(c.Repos))
	for _, s := range c.Repos {
		repo, err := types.NewRepository(s)
		if err != nil {
			return nil, &ConfigurationError{Reason: err.Error()}
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// RetryDelayDuration returns retry_delay as a duration (configured in
// seconds).
func (c *Config) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay) * time.Second
}

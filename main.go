package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/core"
	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/briandowns/spinner"

	"github.com/prwatch/prwatch/internal/aggregate"
	"github.com/prwatch/prwatch/internal/config"
	"github.com/prwatch/prwatch/internal/gh"
	"github.com/prwatch/prwatch/internal/report"
	"github.com/prwatch/prwatch/internal/review"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	verifyOnly := flag.Bool("verify-only", false, "Only verify token permissions without fetching")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logLevel := logging.INFO
	switch cfg.LogLevel {
	case "debug":
		logLevel = logging.DEBUG
	case "warn":
		logLevel = logging.WARN
	case "error":
		logLevel = logging.ERROR
	}
	if *debug {
		logLevel = logging.DEBUG
	}
	output := logging.NewConsoleOutput(true, logging.WithColor(true))
	logger := logging.NewLogger(logging.Config{
		Severity: logLevel,
		Outputs:  []logging.Output{output},
	})
	logging.SetLogger(logger)

	ctx := core.WithExecutionState(context.Background())

	repos, err := cfg.Repositories()
	if err != nil {
		logger.Error(ctx, "Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger.Debug(ctx, "Watching developers: %v", cfg.Developers)
	logger.Debug(ctx, "Watching repositories: %v", cfg.Repos)

	client := gh.NewClient(cfg.Token, cfg.RetryCount, cfg.RetryDelayDuration())
	if err := client.VerifyAccess(ctx, repos[0]); err != nil {
		logger.Error(ctx, "Token permission verification failed: %v", err)
		os.Exit(1)
	}
	if *verifyOnly {
		os.Exit(0)
	}

	// Provider misconfiguration is fatal before any fetch begins.
	var orchestrator *review.Orchestrator
	if cfg.AIReview.Enabled {
		orchestrator, err = review.NewOrchestrator(cfg.AIReview, client)
		if err != nil {
			logger.Error(ctx, "AI review configuration invalid: %v", err)
			os.Exit(1)
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Prefix = "Fetching pull requests "
	if err := s.Color("cyan"); err != nil {
		logger.Error(ctx, "Failed to start spinner properly")
	}

	fetcher := gh.NewFetcher(client, cfg.Developers, cfg.IncludeDrafts)
	s.Start()
	prs := aggregate.FetchAll(ctx, fetcher, repos, cfg.ParallelThreads)
	s.Stop()

	if len(prs) == 0 {
		fmt.Println("No open pull requests found for the watched developers in the watched repositories.")
		os.Exit(0)
	}

	if orchestrator != nil {
		logger.Info(ctx, "Starting AI review of %d pull requests", len(prs))
		results := review.ReviewAll(ctx, orchestrator, prs, cfg.AIReview.ConcurrentReviews)
		logger.Info(ctx, "AI review posted on %d of %d pull requests", len(results), len(prs))
	}

	reporter := report.NewReporter(repos, cfg.Developers, cfg.OutputFile)
	if err := reporter.Generate(ctx, prs); err != nil {
		logger.Error(ctx, "Failed to generate report: %v", err)
		os.Exit(1)
	}
}

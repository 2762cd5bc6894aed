package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/msaleem/trendwatch/pkg/collector"
	"github.com/msaleem/trendwatch/pkg/config"
	"github.com/msaleem/trendwatch/pkg/domain"
	"github.com/msaleem/trendwatch/pkg/keywords"
	"github.com/msaleem/trendwatch/pkg/llm"
	"github.com/msaleem/trendwatch/pkg/repository"
	"github.com/msaleem/trendwatch/pkg/scheduler"
	"github.com/msaleem/trendwatch/pkg/source"
	"github.com/msaleem/trendwatch/pkg/trend"
	"github.com/msaleem/trendwatch/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	// load .env if present, real environment wins
	_ = godotenv.Load()

	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	log.Printf("[INFO] starting trendwatch version %s", revision)

	if err := run(opts); err != nil {
		log.Printf("[ERROR] trendwatch failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

func run(opts Opts) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("can't load config: %w", err)
	}
	// re-setup logging to mask tokens from the loaded config
	var secrets []string
	for _, s := range []string{cfg.Sources.YouTube.APIKey, cfg.Sources.Twitter.BearerToken, cfg.LLM.APIKey} {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	setupLog(opts.Debug, opts.NoColor, secrets...)

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("can't initialize database: %w", err)
	}
	defer func() {
		if e := repos.Close(); e != nil {
			log.Printf("[WARN] can't close database: %v", e)
		}
	}()

	kwStore := keywords.NewStore(ctx, repos.Keyword)
	log.Printf("[INFO] tracking keywords: %v", kwStore.All())

	aggregator := trend.NewAggregator(trend.Config{
		SourceWeights:      toSourceMap(cfg.Scoring.Weights),
		EngagementDivisors: toSourceMap(cfg.Scoring.EngagementDivisors),
		EngagementWeight:   cfg.Scoring.EngagementWeight,
		ContentMatchBonus:  cfg.Scoring.ContentMatchBonus,
		SentimentSampleCap: cfg.Scoring.SentimentSampleCap,
		PolarityThreshold:  cfg.Scoring.PolarityThreshold,
		ContextCap:         cfg.Scoring.ContextCap,
		ExcerptLength:      cfg.Scoring.ExcerptLength,
	}, makeSentimentAnalyzer(cfg))

	coll := collector.New(kwStore, makeSources(cfg),
		aggregator,
		&pruningStore{repo: repos.Snapshot, keep: cfg.Schedule.KeepRuns},
		collector.Config{SourceTimeout: cfg.Sources.Timeout},
	)

	sched := scheduler.New(coll, cfg.Schedule.Spec, cfg.Schedule.RunTimeout)
	if cfg.Schedule.Enabled {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("can't start scheduler: %w", err)
		}
		defer sched.Stop()
		log.Printf("[INFO] scheduler started, spec %q", cfg.Schedule.Spec)
	}

	srv := server.New(cfg, kwStore, repos.Snapshot, coll, sched, revision, opts.Debug)
	return srv.Run(ctx)
}

// makeSources builds the per-platform clients, nil for disabled sources
func makeSources(cfg *config.Config) collector.Sources {
	var sources collector.Sources
	sc := cfg.Sources

	if sc.GoogleTrends.Enabled {
		sources.Trends = source.NewTrendsClient(sc.Timeout, sc.UserAgent, sc.GoogleTrends.Timeframe)
	}
	if sc.Reddit.Enabled {
		sources.Reddit = source.NewRedditClient(sc.Timeout, sc.UserAgent, sc.Reddit.Limit)
	}
	if sc.YouTube.Enabled {
		sources.YouTube = source.NewYouTubeClient(sc.Timeout, sc.YouTube.APIKey, sc.YouTube.MaxResults)
	}
	if sc.Twitter.Enabled {
		sources.Twitter = source.NewTwitterClient(sc.Timeout, sc.Twitter.BearerToken, "", sc.Twitter.MaxResults)
	}
	if sc.Upwork.Enabled {
		sources.Upwork = source.NewUpworkClient(sc.Timeout, sc.UserAgent)
	}
	return sources
}

// makeSentimentAnalyzer picks the backend, lexicon by default
func makeSentimentAnalyzer(cfg *config.Config) trend.SentimentAnalyzer {
	if cfg.Sentiment.Backend == "llm" {
		log.Printf("[INFO] using llm sentiment backend, model %s", cfg.LLM.Model)
		return llm.NewSentimentAnalyzer(cfg.GetLLMConfig())
	}
	return trend.NewLexiconAnalyzer()
}

func toSourceMap(m map[string]float64) map[domain.Source]float64 {
	if len(m) == 0 {
		return nil
	}
	res := make(map[domain.Source]float64, len(m))
	for k, v := range m {
		res[domain.Source(k)] = v
	}
	return res
}

// pruningStore saves a run and trims history to the configured retention
type pruningStore struct {
	repo *repository.SnapshotRepository
	keep int
}

func (p *pruningStore) SaveRun(ctx context.Context, snap *domain.Snapshot, items []domain.NormalizedItem) error {
	if err := p.repo.SaveRun(ctx, snap, items); err != nil {
		return err
	}
	if pruned, err := p.repo.PruneRuns(ctx, p.keep); err != nil {
		log.Printf("[WARN] can't prune old runs: %v", err)
	} else if pruned > 0 {
		log.Printf("[DEBUG] pruned %d old runs", pruned)
	}
	return nil
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:trendwatch.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		Enabled    bool          `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Run collections on a schedule"`
		Spec       string        `yaml:"spec" json:"spec" jsonschema:"default=@every 6h,description=Cron expression for scheduled collections"`
		RunTimeout time.Duration `yaml:"run_timeout" json:"run_timeout" jsonschema:"default=5m,description=Budget for one full collection run"`
		KeepRuns   int           `yaml:"keep_runs" json:"keep_runs" jsonschema:"default=10,description=Number of past runs to retain"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Sources   SourcesConfig   `yaml:"sources" json:"sources" jsonschema:"description=Per-platform source configuration"`
	Scoring   ScoringConfig   `yaml:"scoring" json:"scoring" jsonschema:"description=Trending score tunables"`
	Sentiment SentimentConfig `yaml:"sentiment" json:"sentiment" jsonschema:"description=Sentiment analysis configuration"`
	LLM       LLMConfig       `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for the llm sentiment backend"`
}

// SourcesConfig holds per-platform client settings. A disabled source is
// skipped on every run.
type SourcesConfig struct {
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Trendwatch/1.0,description=User agent for HTTP requests"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Per-source fetch budget"`

	GoogleTrends struct {
		Enabled   bool   `yaml:"enabled" json:"enabled" jsonschema:"default=true"`
		Timeframe string `yaml:"timeframe" json:"timeframe" jsonschema:"default=today 3-m,description=Trends timeframe notation"`
	} `yaml:"google_trends" json:"google_trends"`

	Reddit struct {
		Enabled bool `yaml:"enabled" json:"enabled" jsonschema:"default=true"`
		Limit   int  `yaml:"limit" json:"limit" jsonschema:"default=50,description=Posts per keyword"`
	} `yaml:"reddit" json:"reddit"`

	YouTube struct {
		Enabled    bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false"`
		APIKey     string `yaml:"api_key" json:"api_key" jsonschema:"description=YouTube Data API key (can use environment variable)"`
		MaxResults int    `yaml:"max_results" json:"max_results" jsonschema:"default=25,description=Videos per keyword"`
	} `yaml:"youtube" json:"youtube"`

	Twitter struct {
		Enabled     bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false"`
		BearerToken string `yaml:"bearer_token" json:"bearer_token" jsonschema:"description=API v2 bearer token (can use environment variable)"`
		MaxResults  int    `yaml:"max_results" json:"max_results" jsonschema:"default=50,description=Tweets per keyword"`
	} `yaml:"twitter" json:"twitter"`

	Upwork struct {
		Enabled bool `yaml:"enabled" json:"enabled" jsonschema:"default=true"`
	} `yaml:"upwork" json:"upwork"`
}

// ScoringConfig holds the trending score tunables. Zero values fall back to
// the aggregator defaults.
type ScoringConfig struct {
	Weights            map[string]float64 `yaml:"weights" json:"weights" jsonschema:"description=Per-source mention weight"`
	EngagementDivisors map[string]float64 `yaml:"engagement_divisors" json:"engagement_divisors" jsonschema:"description=Per-source engagement rescale divisor"`
	EngagementWeight   float64            `yaml:"engagement_weight" json:"engagement_weight" jsonschema:"default=1.0,description=Weight of the engagement term"`
	ContentMatchBonus  float64            `yaml:"content_match_bonus" json:"content_match_bonus" jsonschema:"default=0.25,description=Score credit for incidental keyword mentions"`
	SentimentSampleCap int                `yaml:"sentiment_sample_cap" json:"sentiment_sample_cap" jsonschema:"default=20,description=Texts sampled per keyword for sentiment"`
	PolarityThreshold  float64            `yaml:"polarity_threshold" json:"polarity_threshold" jsonschema:"default=0.1,description=Neutral band around zero polarity"`
	ContextCap         int                `yaml:"context_cap" json:"context_cap" jsonschema:"default=5,description=Sample excerpts per keyword"`
	ExcerptLength      int                `yaml:"excerpt_length" json:"excerpt_length" jsonschema:"default=100,description=Excerpt length in characters"`
}

// SentimentConfig selects the sentiment backend
type SentimentConfig struct {
	Backend string `yaml:"backend" json:"backend" jsonschema:"default=lexicon,enum=lexicon,enum=llm,description=Sentiment backend"`
}

// LLMConfig holds LLM settings for the llm sentiment backend
type LLMConfig struct {
	Endpoint     string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey       string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model        string        `yaml:"model" json:"model" jsonschema:"description=Model name (e.g. gpt-4o-mini or llama3)"`
	Temperature  float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Temperature for response generation"`
	MaxTokens    int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=200,description=Maximum tokens in response"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt override (optional)"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:trendwatch.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for schedule
	if cfg.Schedule.Spec == "" {
		cfg.Schedule.Spec = "@every 6h"
	}
	if cfg.Schedule.RunTimeout == 0 {
		cfg.Schedule.RunTimeout = 5 * time.Minute
	}
	if cfg.Schedule.KeepRuns == 0 {
		cfg.Schedule.KeepRuns = 10
	}

	// set defaults for sources
	if cfg.Sources.UserAgent == "" {
		cfg.Sources.UserAgent = "Trendwatch/1.0"
	}
	if cfg.Sources.Timeout == 0 {
		cfg.Sources.Timeout = 30 * time.Second
	}
	if cfg.Sources.GoogleTrends.Timeframe == "" {
		cfg.Sources.GoogleTrends.Timeframe = "today 3-m"
	}
	if cfg.Sources.Reddit.Limit == 0 {
		cfg.Sources.Reddit.Limit = 50
	}
	if cfg.Sources.YouTube.MaxResults == 0 {
		cfg.Sources.YouTube.MaxResults = 25
	}
	if cfg.Sources.Twitter.MaxResults == 0 {
		cfg.Sources.Twitter.MaxResults = 50
	}

	// set defaults for sentiment and LLM
	if cfg.Sentiment.Backend == "" {
		cfg.Sentiment.Backend = "lexicon"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 200
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate schedule config
	if cfg.Schedule.KeepRuns < 1 {
		return fmt.Errorf("schedule.keep_runs must be at least 1")
	}

	// validate source credentials for enabled sources
	if cfg.Sources.YouTube.Enabled && cfg.Sources.YouTube.APIKey == "" {
		return fmt.Errorf("sources.youtube.api_key is required when youtube is enabled")
	}
	if cfg.Sources.Twitter.Enabled && cfg.Sources.Twitter.BearerToken == "" {
		return fmt.Errorf("sources.twitter.bearer_token is required when twitter is enabled")
	}

	// validate scoring config
	for src, w := range cfg.Scoring.Weights {
		if w < 0 {
			return fmt.Errorf("scoring.weights[%s] must be non-negative", src)
		}
	}
	for src, d := range cfg.Scoring.EngagementDivisors {
		if d < 0 {
			return fmt.Errorf("scoring.engagement_divisors[%s] must be non-negative", src)
		}
	}
	if cfg.Scoring.PolarityThreshold < 0 || cfg.Scoring.PolarityThreshold > 1 {
		return fmt.Errorf("scoring.polarity_threshold must be between 0 and 1")
	}

	// validate sentiment config
	switch cfg.Sentiment.Backend {
	case "lexicon":
	case "llm":
		if cfg.LLM.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required for the llm sentiment backend")
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required for the llm sentiment backend")
		}
		if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
			return fmt.Errorf("llm.temperature must be between 0 and 2")
		}
	default:
		return fmt.Errorf("sentiment.backend must be lexicon or llm, got %q", cfg.Sentiment.Backend)
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetLLMConfig returns LLM configuration
func (c *Config) GetLLMConfig() LLMConfig {
	return c.LLM
}

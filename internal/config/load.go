package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

// envFiles are tried in order; the first one that parses wins. Variables already
// present in the process environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

// Load reads, expands, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// Parse builds a Config from raw YAML, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
		return
	}
}

// normalize case-folds enumerations before defaults are applied.
func normalize(cfg *Config) error {
	if cfg.Build.Format != "" {
		f, err := NormalizeOutputFormat(string(cfg.Build.Format))
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid build.format").Fatal().Build()
		}
		cfg.Build.Format = f
	}
	if cfg.Retry.Backoff != "" {
		m, err := NormalizeRetryBackoff(string(cfg.Retry.Backoff))
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid retry.backoff").
				WithContext("value", string(cfg.Retry.Backoff)).
				Fatal().
				Build()
		}
		cfg.Retry.Backoff = m
	}
	cfg.Monitoring.Logging.Level = NormalizeLogLevel(string(cfg.Monitoring.Logging.Level))
	cfg.Monitoring.Logging.Format = NormalizeLogFormat(string(cfg.Monitoring.Logging.Format))
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Notion.APIURL == "" {
		cfg.Notion.APIURL = "https://api.notion.com/v1"
	}
	if cfg.Notion.Version == "" {
		cfg.Notion.Version = "2022-06-28"
	}
	if cfg.Notion.PageSize <= 0 || cfg.Notion.PageSize > 100 {
		cfg.Notion.PageSize = 100
	}
	if cfg.Retry.Backoff == "" {
		cfg.Retry.Backoff = RetryBackoffExponential
	}
	if cfg.Retry.MaxRetries == nil {
		retries := 2
		cfg.Retry.MaxRetries = &retries
	}
	if cfg.Lock.QueueSize <= 0 {
		cfg.Lock.QueueSize = 64
	}
	if cfg.Site.PostsPerPage <= 0 {
		cfg.Site.PostsPerPage = 10
	}
	if cfg.Site.RankedPosts <= 0 {
		cfg.Site.RankedPosts = 5
	}
	if cfg.Build.Output == "" {
		cfg.Build.Output = "./dist"
	}
	if cfg.Build.Format == "" {
		cfg.Build.Format = OutputFormatHTML
	}
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = 4
	}
	if cfg.Assets.Dir == "" {
		cfg.Assets.Dir = "notion"
	}
}

// Validate checks required fields.
func Validate(cfg *Config) error {
	if cfg.Notion.Token == "" {
		return errors.ConfigError("notion.token is required").Build()
	}
	if cfg.Notion.DatabaseID == "" {
		return errors.ConfigError("notion.database_id is required").Build()
	}
	if cfg.Retry.Retries() < 0 {
		return errors.ConfigError("retry.max_retries must not be negative").
			WithContext("value", cfg.Retry.Retries()).
			Build()
	}
	seen := make(map[string]bool, len(cfg.Site.Languages))
	for _, lang := range cfg.Site.Languages {
		if lang == "" {
			return errors.ConfigError("site.languages must not contain empty entries").Build()
		}
		if seen[lang] {
			return errors.ConfigError("duplicate language in site.languages").WithContext("lang", lang).Build()
		}
		seen[lang] = true
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	retries := 2
	example := Config{
		Notion: NotionConfig{
			Token:      "${NOTION_API_SECRET}",
			DatabaseID: "${DATABASE_ID}",
			Timeout:    "30s",
		},
		Retry: RetryConfig{MaxRetries: &retries, Backoff: RetryBackoffExponential, InitialDelay: "1s", MaxDelay: "30s"},
		Lock:  LockConfig{QueueSize: 64, MaxHold: "5m"},
		Site: SiteConfig{
			Title:        "My Notion Blog",
			Description:  "Posts written in Notion",
			BaseURL:      "https://blog.example.com",
			Languages:    []string{"en"},
			PostsPerPage: 10,
			RankedPosts:  5,
		},
		Build: BuildConfig{Output: "./dist", Format: OutputFormatHTML, Concurrency: 4, Clean: true},
		Assets: AssetsConfig{Dir: "notion"},
		Monitoring: MonitoringConfig{
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

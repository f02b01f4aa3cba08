package config

import "time"

// Config is the notionblog configuration file.
type Config struct {
	Notion     NotionConfig     `yaml:"notion"`
	Retry      RetryConfig      `yaml:"retry"`
	Lock       LockConfig       `yaml:"lock"`
	Site       SiteConfig       `yaml:"site"`
	Build      BuildConfig      `yaml:"build"`
	Assets     AssetsConfig     `yaml:"assets"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// NotionConfig describes the remote content source.
type NotionConfig struct {
	Token      string `yaml:"token"`
	DatabaseID string `yaml:"database_id"`
	APIURL     string `yaml:"api_url"`
	Version    string `yaml:"version"`
	PageSize   int    `yaml:"page_size"`
	Timeout    string `yaml:"timeout"`
}

// TimeoutDuration returns the per-request HTTP timeout.
func (n NotionConfig) TimeoutDuration() time.Duration {
	return parseDuration(n.Timeout, 30*time.Second)
}

// RetryConfig controls the transport retry policy.
type RetryConfig struct {
	MaxRetries   *int             `yaml:"max_retries"`
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay string           `yaml:"initial_delay"`
	MaxDelay     string           `yaml:"max_delay"`
}

// Retries is the retry budget after the first attempt. An explicit 0 disables
// retries; an absent value means 2.
func (r RetryConfig) Retries() int {
	if r.MaxRetries == nil {
		return 2
	}
	return *r.MaxRetries
}

// InitialDelayDuration parses InitialDelay (defaults to 1s).
func (r RetryConfig) InitialDelayDuration() time.Duration {
	return parseDuration(r.InitialDelay, time.Second)
}

// MaxDelayDuration parses MaxDelay (defaults to 30s).
func (r RetryConfig) MaxDelayDuration() time.Duration {
	return parseDuration(r.MaxDelay, 30*time.Second)
}

// LockConfig bounds the single-flight domains guarding the cache.
type LockConfig struct {
	QueueSize int    `yaml:"queue_size"`
	MaxHold   string `yaml:"max_hold"`
}

// MaxHoldDuration is the longest a waiter blocks on an in-flight population.
func (l LockConfig) MaxHoldDuration() time.Duration {
	return parseDuration(l.MaxHold, 5*time.Minute)
}

// SiteConfig holds site-level presentation settings.
type SiteConfig struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	BaseURL      string   `yaml:"base_url"`
	Languages    []string `yaml:"languages"`
	PostsPerPage int      `yaml:"posts_per_page"`
	RankedPosts  int      `yaml:"ranked_posts"`
}

// BuildConfig controls output generation.
type BuildConfig struct {
	Output      string       `yaml:"output"`
	Format      OutputFormat `yaml:"format"`
	SnapshotDir string       `yaml:"snapshot_dir"`
	Concurrency int          `yaml:"concurrency"`
	Clean       bool         `yaml:"clean"`
}

// AssetsConfig controls the asset materializer.
type AssetsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// IsEnabled reports whether remote files are downloaded (default true).
func (a AssetsConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// MonitoringConfig groups logging and metrics export.
type MonitoringConfig struct {
	Logging MonitoringLogging `yaml:"logging"`
	Metrics MonitoringMetrics `yaml:"metrics"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MonitoringMetrics configures the Prometheus textfile written after a build.
type MonitoringMetrics struct {
	Textfile string `yaml:"textfile"`
}

// Languages returns the configured languages, or a single empty language meaning
// "no language filter".
func (c *Config) Languages() []string {
	if len(c.Site.Languages) == 0 {
		return []string{""}
	}
	return c.Site.Languages
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

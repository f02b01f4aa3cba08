package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/notionblog/internal/config"
	"git.home.luguber.info/inful/notionblog/internal/content"
	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/lock"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/notion"
	"git.home.luguber.info/inful/notionblog/internal/retry"
)

// Global is passed to every command's Run method.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Generate the site from the Notion database"`
	Snapshot SnapshotCmd `cmd:"" help:"Fetch the database and every post into a snapshot directory for offline builds"`
	Posts    PostsCmd    `cmd:"" help:"List the posts that would be published"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; it installs a text logger until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(NewLogger(os.Stderr, level, config.LogFormatText))
	return nil
}

// NewLogger builds the process logger for the given level and format.
func NewLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig reads the configuration named by -c and reinstalls the default
// logger from monitoring.logging. -v always wins over the configured level.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	level := cfg.Monitoring.Logging.Level.SlogLevel()
	if root.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = NewLogger(os.Stderr, level, cfg.Monitoring.Logging.Format)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// newClient returns the live API client with the configured retry policy.
func newClient(cfg *config.Config, recorder metrics.Recorder) *notion.Client {
	return notion.NewClient(cfg.Notion,
		notion.WithPolicy(retry.FromConfig(cfg.Retry)),
		notion.WithRecorder(recorder),
	)
}

// newService wires the content cache over t. snap may be nil.
func newService(cfg *config.Config, t notion.Transport, snap *notion.SnapshotDir, recorder metrics.Recorder) *content.Service {
	return content.NewService(t, content.Options{
		DatabaseID:   cfg.Notion.DatabaseID,
		PostsPerPage: cfg.Site.PostsPerPage,
		Snapshot:     snap,
		Locks:        lock.NewSet(cfg.Lock.QueueSize, cfg.Lock.MaxHoldDuration()),
		Recorder:     recorder,
	})
}

// openTransport returns the transport a build reads through: the snapshot
// directory alone when offline, the live client otherwise.
func openTransport(cfg *config.Config, offline bool, recorder metrics.Recorder) (notion.Transport, *notion.SnapshotDir, error) {
	snap := notion.OpenSnapshot(cfg.Build.SnapshotDir)
	if !offline {
		return newClient(cfg, recorder), snap, nil
	}
	if snap == nil {
		return nil, nil, errors.ValidationError("offline builds require build.snapshot_dir").Build()
	}
	return notion.NewOffline(snap), snap, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// writeMetrics exports the recorder to the configured textfile, if any.
func writeMetrics(cfg *config.Config, rec *metrics.PrometheusRecorder) {
	path := cfg.Monitoring.Metrics.Textfile
	if path == "" {
		return
	}
	if err := rec.WriteTextfile(path); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
		return
	}
	slog.Debug("Wrote metrics textfile", logfields.Path(path))
}

package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/notionblog/internal/config"
	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output  string `short:"o" help:"Output directory (overrides build.output)"`
	Format  string `help:"Output format: html or hugo (overrides build.format)"`
	Offline bool   `help:"Read content only from build.snapshot_dir"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}
	return RunBuild(g, cfg, b.Offline)
}

// apply folds the command-line overrides into cfg.
func (b *BuildCmd) apply(cfg *config.Config) error {
	if b.Output != "" {
		cfg.Build.Output = b.Output
	}
	if b.Format != "" {
		f, err := config.NormalizeOutputFormat(b.Format)
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid --format").Build()
		}
		cfg.Build.Format = f
	}
	return nil
}

// RunBuild generates the site described by cfg.
func RunBuild(g *Global, cfg *config.Config, offline bool) error {
	ctx, cancel := signalContext()
	defer cancel()

	rec := metrics.NewPrometheusRecorder(nil)
	defer writeMetrics(cfg, rec)

	transport, snap, err := openTransport(cfg, offline, rec)
	if err != nil {
		return err
	}
	svc := newService(cfg, transport, snap, rec)

	g.Logger.Info("Starting build",
		logfields.Path(cfg.Build.Output),
		slog.String("format", string(cfg.Build.Format)),
		slog.Bool("offline", offline),
		slog.Int("languages", len(cfg.Languages())))

	gen := site.NewGenerator(cfg, svc, site.WithRecorder(rec))
	report, err := gen.Generate(ctx)
	if report != nil {
		_, _ = fmt.Fprintln(g.Stdout, report.Summary())
	}
	return err
}

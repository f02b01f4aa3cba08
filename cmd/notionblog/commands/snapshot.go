package commands

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/notionblog/internal/config"
	"git.home.luguber.info/inful/notionblog/internal/content"
	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/notion"
)

// SnapshotCmd implements the 'snapshot' command.
type SnapshotCmd struct {
	Dir string `short:"d" help:"Snapshot directory (overrides build.snapshot_dir)"`
}

func (s *SnapshotCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if s.Dir != "" {
		cfg.Build.SnapshotDir = s.Dir
	}
	ctx, cancel := signalContext()
	defer cancel()

	rec := metrics.NewPrometheusRecorder(nil)
	defer writeMetrics(cfg, rec)
	return RunSnapshot(ctx, g, cfg, newClient(cfg, rec), rec)
}

// RunSnapshot fetches the database metadata, the posts of every configured
// language and each post's block tree live through t, recording every listing
// into build.snapshot_dir.
func RunSnapshot(ctx context.Context, g *Global, cfg *config.Config, t notion.Transport, recorder metrics.Recorder) error {
	snap := notion.OpenSnapshot(cfg.Build.SnapshotDir)
	if snap == nil {
		return errors.ValidationError("snapshot requires a directory (-d or build.snapshot_dir)").Build()
	}
	svc := newService(cfg, notion.NewRecorder(t, snap), nil, recorder)

	if _, err := svc.Database(ctx); err != nil {
		return err
	}
	n := 0
	for _, lang := range cfg.Languages() {
		count, err := snapshotLanguage(ctx, svc, lang, cfg.Build.Concurrency)
		if err != nil {
			return err
		}
		n += count
	}
	g.Logger.Info("Snapshot written", logfields.Path(snap.Root()), slog.Int("posts", n))
	_, _ = fmt.Fprintf(g.Stdout, "Snapshot of %d posts written to %s\n", n, snap.Root())
	return nil
}

func snapshotLanguage(ctx context.Context, svc *content.Service, lang string, concurrency int) (int, error) {
	all, err := svc.AllPosts(ctx, lang)
	if err != nil {
		return 0, err
	}
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(max(concurrency, 1))
	for _, p := range all {
		eg.Go(func() error {
			if _, err := svc.Blocks(ectx, p.PageID); err != nil {
				if ce, ok := errors.AsClassified(err); ok {
					return ce.Annotate("slug", p.Slug)
				}
				return err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	return len(all), nil
}

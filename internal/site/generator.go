package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/notionblog/internal/assets"
	"git.home.luguber.info/inful/notionblog/internal/blocks"
	"git.home.luguber.info/inful/notionblog/internal/config"
	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/observability"
	"git.home.luguber.info/inful/notionblog/internal/posts"
	"git.home.luguber.info/inful/notionblog/internal/render"
)

// Content is the read side of the content service the generator builds from.
type Content interface {
	Database(ctx context.Context) (posts.Database, error)
	AllPosts(ctx context.Context, lang string) ([]posts.Post, error)
	Blocks(ctx context.Context, postID string) ([]blocks.Block, error)
	Block(ctx context.Context, blockID string) (blocks.Block, error)
}

// Writer persists the built site of one language.
type Writer interface {
	WriteSite(ctx context.Context, s *Site) (int, error)
	// WriteRoot writes files shared by all languages once every language is built.
	WriteRoot(ctx context.Context, langs []string) error
}

// Site is everything a writer needs for one language.
type Site struct {
	Lang         string
	Routes       Routes
	Title        string
	Description  string
	BaseURL      string
	Icon         string
	IconURL      string
	CoverURL     string
	Posts        []RenderedPost
	Ranked       []RenderedPost
	Tags         []posts.Tag
	PostsPerPage int
}

// RenderedPost is a post with its rendered body and resolved media URLs.
type RenderedPost struct {
	posts.Post
	URL              string
	Markdown         string
	HTML             string
	Outline          []render.OutlineEntry
	IconURL          string
	CoverURL         string
	FeaturedImageURL string
}

// Generator builds the configured languages.
type Generator struct {
	cfg     *config.Config
	content Content
	writer  Writer

	assets    *assets.Materializer
	assetsSet bool // explicit WithMaterializer, including nil

	recorder metrics.Recorder
	buildID  string
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = metrics.OrNoop(r) }
}

// WithWriter replaces the writer selected by build.format.
func WithWriter(w Writer) Option {
	return func(g *Generator) { g.writer = w }
}

// WithMaterializer replaces the asset materializer; nil disables downloads.
func WithMaterializer(m *assets.Materializer) Option {
	return func(g *Generator) { g.assets, g.assetsSet = m, true }
}

// WithClock sets the time used to decide whether hosted file URLs expired.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator returns a Generator writing to cfg.Build.Output.
func NewGenerator(cfg *config.Config, c Content, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		content:  c,
		recorder: metrics.NoopRecorder{},
		buildID:  uuid.NewString(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.writer == nil {
		switch cfg.Build.Format {
		case config.OutputFormatHugo:
			g.writer = NewHugoWriter(cfg.Build.Output)
		default:
			g.writer = NewHTMLWriter(cfg.Build.Output)
		}
	}
	if !g.assetsSet && cfg.Assets.IsEnabled() {
		g.assets = assets.New(assetRoot(cfg), cfg.Assets.Dir, assets.WithRecorder(g.recorder))
	}
	return g
}

// BuildID identifies this build in logs and the report.
func (g *Generator) BuildID() string { return g.buildID }

// Generate builds every language and persists the report. The report is
// returned even when the build fails.
func (g *Generator) Generate(ctx context.Context) (*BuildReport, error) {
	ctx = observability.WithBuildID(ctx, g.buildID)
	langs := g.cfg.Languages()
	report := newBuildReport(g.buildID, string(g.cfg.Build.Format), langs)
	start := time.Now()

	err := g.prepareOutput()
	if err == nil {
		err = g.buildLanguages(ctx, langs, report)
	}
	if err == nil {
		err = g.writer.WriteRoot(ctx, langs)
		if err != nil {
			report.addError(err)
		}
	} else if len(report.Errors) == 0 {
		report.addError(err)
	}

	report.Finish()
	g.recorder.ObserveBuildDuration(time.Since(start))
	g.recorder.IncBuildOutcome(report.MetricsOutcome())
	if perr := report.Persist(g.cfg.Build.Output); perr != nil {
		observability.WarnContext(ctx, "Failed to persist build report", logfields.Error(perr))
	}
	observability.InfoContext(ctx, "Build finished",
		logfields.DurationMS(float64(time.Since(start).Milliseconds())),
		slog.String("outcome", string(report.Outcome)))
	return report, err
}

// buildLanguages runs every language to completion; one failing language does
// not cancel the others. The first error is returned.
func (g *Generator) buildLanguages(ctx context.Context, langs []string, report *BuildReport) error {
	var eg errgroup.Group
	eg.SetLimit(max(g.cfg.Build.Concurrency, 1))
	for _, lang := range langs {
		eg.Go(func() error {
			lctx := observability.WithLang(ctx, lang)
			b := &langBuild{g: g, lang: lang, routes: Routes{Lang: lang}, report: report, fresh: map[string]string{}}
			if err := runStages(lctx, b, defaultStages, report, g.recorder); err != nil {
				report.addError(err)
				return err
			}
			return nil
		})
	}
	return eg.Wait()
}

func (g *Generator) prepareOutput() error {
	out := g.cfg.Build.Output
	if g.cfg.Build.Clean {
		abs, err := filepath.Abs(out)
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve output directory").Build()
		}
		if wd, _ := os.Getwd(); abs == filepath.Dir(abs) || abs == wd {
			return errors.ConfigError("refusing to clean output directory").
				WithContext("path", abs).
				Build()
		}
		if err := os.RemoveAll(abs); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean output directory").
				WithContext("path", abs).
				Build()
		}
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", out).
			Build()
	}
	return nil
}

var defaultStages = []StageDef{
	{StageFetch, stageFetch},
	{StageAssets, stageAssets},
	{StageRender, stageRender},
	{StageWrite, stageWrite},
}

// langBuild is the state of one language build.
type langBuild struct {
	g      *Generator
	lang   string
	routes Routes
	report *BuildReport

	db      posts.Database
	all     []posts.Post
	visible []posts.Post
	trees   [][]blocks.Block

	mu    sync.Mutex
	fresh map[string]string

	site *Site
}

func stageFetch(ctx context.Context, b *langBuild) error {
	db, err := b.g.content.Database(ctx)
	if err != nil {
		return err
	}
	all, err := b.g.content.AllPosts(ctx, b.lang)
	if err != nil {
		return err
	}
	b.db, b.all, b.visible = db, all, posts.Visible(all)
	b.trees = make([][]blocks.Block, len(b.visible))

	var eg errgroup.Group
	eg.SetLimit(max(b.g.cfg.Build.Concurrency, 1))
	for i, p := range b.visible {
		eg.Go(func() error {
			tree, err := b.g.content.Blocks(ctx, p.PageID)
			if err != nil {
				return withPost(err, p)
			}
			b.trees[i] = tree
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	b.report.addPosts(len(b.visible))
	observability.InfoContext(ctx, "Fetched content", slog.Int("posts", len(b.visible)))
	return nil
}

func stageAssets(ctx context.Context, b *langBuild) error {
	if b.g.assets == nil {
		return nil
	}
	var eg errgroup.Group
	eg.SetLimit(max(b.g.cfg.Build.Concurrency, 1))
	fetch := func(blockID string, src blocks.FileSource) {
		if src.URL() == "" {
			return
		}
		eg.Go(func() error {
			b.materialize(ctx, b.resolve(ctx, blockID, src))
			return nil
		})
	}
	fetchPtr := func(src *blocks.FileSource) {
		if src != nil {
			fetch("", *src)
		}
	}

	fetchPtr(b.db.Cover)
	fetchIcon(b.db.Icon, fetch)
	for i, p := range b.visible {
		fetchPtr(p.Cover)
		fetchPtr(p.FeaturedImage)
		fetchIcon(p.Icon, fetch)
		walk(b.trees[i], func(blk blocks.Block) {
			switch v := blk.(type) {
			case blocks.Image:
				fetch(v.ID(), v.Source)
			case blocks.Video:
				if v.Source.File != nil {
					fetch(v.ID(), v.Source)
				}
			case blocks.File:
				if v.Source.File != nil {
					fetch(v.ID(), v.Source)
				}
			case blocks.Callout:
				fetchIcon(v.Icon, fetch)
			}
		})
	}
	return eg.Wait()
}

func fetchIcon(icon *blocks.Icon, fetch func(string, blocks.FileSource)) {
	if icon != nil && icon.Image != nil {
		fetch("", *icon.Image)
	}
}

// resolve returns the URL to download for src, re-retrieving the owning block
// when a hosted URL has expired.
func (b *langBuild) resolve(ctx context.Context, blockID string, src blocks.FileSource) string {
	stale := src.URL()
	if blockID == "" || !src.Expired(b.g.now()) {
		return stale
	}
	blk, err := b.g.content.Block(ctx, blockID)
	if err != nil {
		observability.WarnContext(ctx, "Failed to refresh expired file URL", logfields.BlockID(blockID), logfields.Error(err))
		b.report.addWarning(fmt.Sprintf("block %s: expired file URL could not be refreshed", blockID))
		return stale
	}
	m, ok := blk.(blocks.Media)
	if !ok || m.MediaSource().URL() == "" {
		return stale
	}
	fresh := m.MediaSource().URL()
	b.mu.Lock()
	b.fresh[stale] = fresh
	b.mu.Unlock()
	return fresh
}

func (b *langBuild) materialize(ctx context.Context, remote string) {
	local := b.g.assets.Fetch(ctx, remote)
	ok := local != remote
	b.report.addAsset(ok)
	if !ok {
		b.report.addWarning("asset not downloaded: " + strings.SplitN(remote, "?", 2)[0])
	}
}

// mediaURL maps a remote URL onto what pages link to.
func (b *langBuild) mediaURL(remote string) string {
	if remote == "" {
		return ""
	}
	b.mu.Lock()
	if fresh, ok := b.fresh[remote]; ok {
		remote = fresh
	}
	b.mu.Unlock()
	if b.g.assets != nil {
		return b.g.assets.URL(remote)
	}
	return remote
}

func (b *langBuild) sourceURL(src *blocks.FileSource) string {
	if src == nil {
		return ""
	}
	return b.mediaURL(src.URL())
}

func (b *langBuild) iconURL(icon *blocks.Icon) string {
	if icon == nil {
		return ""
	}
	return b.sourceURL(icon.Image)
}

func stageRender(ctx context.Context, b *langBuild) error {
	links := make(map[string]posts.Post, len(b.visible))
	for _, p := range b.visible {
		links[pageKey(p.PageID)] = p
	}
	opts := render.Options{
		PageLink: func(id string) (string, string, bool) {
			p, ok := links[pageKey(id)]
			if !ok {
				return "", "", false
			}
			return b.routes.Post(p.Slug), p.Title, true
		},
		MediaURL: b.mediaURL,
	}

	html := b.g.cfg.Build.Format != config.OutputFormatHugo
	rendered := make([]RenderedPost, len(b.visible))
	byID := make(map[string]int, len(b.visible))
	for i, p := range b.visible {
		doc := render.Markdown(b.trees[i], opts)
		rp := RenderedPost{
			Post:             p,
			URL:              b.routes.Post(p.Slug),
			Markdown:         doc.Markdown,
			Outline:          doc.Outline,
			IconURL:          b.iconURL(p.Icon),
			CoverURL:         b.sourceURL(p.Cover),
			FeaturedImageURL: b.sourceURL(p.FeaturedImage),
		}
		if html {
			body, err := render.Body(doc)
			if err != nil {
				return withPost(err, p)
			}
			rp.HTML = body
		}
		rendered[i] = rp
		byID[p.PageID] = i
	}

	var ranked []RenderedPost
	for _, p := range posts.Ranked(b.all, b.g.cfg.Site.RankedPosts) {
		if i, ok := byID[p.PageID]; ok {
			ranked = append(ranked, rendered[i])
		}
	}

	b.site = &Site{
		Lang:         b.lang,
		Routes:       b.routes,
		Title:        firstNonEmpty(b.db.Title, b.g.cfg.Site.Title),
		Description:  firstNonEmpty(b.db.Description, b.g.cfg.Site.Description),
		BaseURL:      strings.TrimRight(b.g.cfg.Site.BaseURL, "/"),
		IconURL:      b.iconURL(b.db.Icon),
		CoverURL:     b.sourceURL(b.db.Cover),
		Posts:        rendered,
		Ranked:       ranked,
		Tags:         posts.AllTags(b.all),
		PostsPerPage: max(b.g.cfg.Site.PostsPerPage, 1),
	}
	if b.db.Icon != nil {
		b.site.Icon = b.db.Icon.Emoji
	}
	return nil
}

func stageWrite(ctx context.Context, b *langBuild) error {
	n, err := b.g.writer.WriteSite(ctx, b.site)
	if err != nil {
		return err
	}
	b.report.addPages(n)
	return nil
}

// walk visits every block of tree depth first.
func walk(tree []blocks.Block, fn func(blocks.Block)) {
	for _, b := range tree {
		fn(b)
		walk(b.Children(), fn)
	}
}

// withPost attaches the post identity to err.
func withPost(err error, p posts.Post) error {
	if ce, ok := errors.AsClassified(err); ok {
		ce.Annotate("slug", p.Slug).Annotate("page_id", p.PageID)
		return err
	}
	return errors.WrapError(err, errors.CategoryRender, "failed to build post").
		WithContext("slug", p.Slug).
		WithContext("page_id", p.PageID).
		Build()
}

func pageKey(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}

func assetRoot(cfg *config.Config) string {
	if cfg.Build.Format == config.OutputFormatHugo {
		return filepath.Join(cfg.Build.Output, "static")
	}
	return cfg.Build.Output
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/notionblog/internal/config"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/posts"
)

// PostsCmd implements the 'posts' command.
type PostsCmd struct {
	Lang    string `help:"Only list posts of this language (default: every configured language)"`
	Offline bool   `help:"Read content only from build.snapshot_dir"`
}

// postLister is the part of the content service the listing needs.
type postLister interface {
	AllPosts(ctx context.Context, lang string) ([]posts.Post, error)
}

func (p *PostsCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	transport, snap, err := openTransport(cfg, p.Offline, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	svc := newService(cfg, transport, snap, nil)
	return ListPosts(ctx, g.Stdout, svc, p.languages(cfg))
}

func (p *PostsCmd) languages(cfg *config.Config) []string {
	if p.Lang != "" {
		return []string{p.Lang}
	}
	return cfg.Languages()
}

// ListPosts prints one line per visible post: language, date, rank, slug,
// title and tags.
func ListPosts(ctx context.Context, w io.Writer, src postLister, langs []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LANG\tDATE\tRANK\tSLUG\tTITLE\tTAGS")
	for _, lang := range langs {
		all, err := src.AllPosts(ctx, lang)
		if err != nil {
			return err
		}
		for _, post := range posts.Visible(all) {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				displayLang(lang),
				post.PublishedAt().Format("2006-01-02"),
				post.Rank,
				post.Slug,
				post.Title,
				tagNames(post.Tags))
		}
	}
	return tw.Flush()
}

func displayLang(lang string) string {
	if lang == "" {
		return "-"
	}
	return lang
}

func tagNames(tags []posts.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ",")
}

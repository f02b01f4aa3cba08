package site

import (
	"context"
	"path"
	"path/filepath"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

// HugoWriter emits Hugo content: one page bundle section per language with a
// markdown file per post. Hugo renders headings with {#id} attributes and the
// inline HTML the body carries when markup.goldmark.renderer.unsafe is set.
type HugoWriter struct {
	root string
}

func NewHugoWriter(root string) *HugoWriter {
	return &HugoWriter{root: root}
}

func (w *HugoWriter) contentDir(lang string) string {
	return path.Join("content", lang)
}

// WriteSite writes <root>/content/<lang>/_index.md and posts/<slug>.md per post.
func (w *HugoWriter) WriteSite(ctx context.Context, s *Site) (int, error) {
	dir := w.contentDir(s.Lang)
	index := map[string]any{"title": s.Title}
	if s.Description != "" {
		index["description"] = s.Description
	}
	if s.CoverURL != "" {
		index["images"] = []string{s.CoverURL}
	}
	if err := w.write(path.Join(dir, "_index.md"), index, ""); err != nil {
		return 0, err
	}
	written := 1

	for _, p := range s.Posts {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		fields := PostFrontMatter(p)
		if err := w.write(path.Join(dir, "posts", Segment(p.Slug)+".md"), fields, p.Markdown); err != nil {
			return written, withPost(err, p.Post)
		}
		written++
	}
	return written, nil
}

// WriteRoot has nothing to write; Hugo's own configuration selects languages.
func (w *HugoWriter) WriteRoot(context.Context, []string) error { return nil }

// PostFrontMatter returns the front matter fields of a post page.
func PostFrontMatter(p RenderedPost) map[string]any {
	fields := map[string]any{
		"title": p.Title,
		"slug":  Segment(p.Slug),
		"date":  p.Date,
	}
	if !p.LastEdited.IsZero() {
		fields["lastmod"] = p.LastEdited.UTC().Format(time.RFC3339)
	}
	if len(p.Tags) > 0 {
		names := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			names[i] = t.Name
		}
		fields["tags"] = names
	}
	if p.Excerpt != "" {
		fields["description"] = p.Excerpt
	}
	if p.Rank > 0 {
		fields["rank"] = p.Rank
	}
	if p.FeaturedImageURL != "" {
		fields["images"] = []string{p.FeaturedImageURL}
	}
	if p.CoverURL != "" {
		fields["cover"] = p.CoverURL
	}
	if p.Icon != nil && p.Icon.Emoji != "" {
		fields["icon"] = p.Icon.Emoji
	}
	if p.Lang != "" {
		fields["lang"] = p.Lang
	}
	fields["notion_id"] = p.PageID
	return fields
}

func (w *HugoWriter) write(rel string, fields map[string]any, body string) error {
	fp, err := fingerprint(fields, body)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to fingerprint page").
			WithContext("path", rel).
			Build()
	}
	fields[mdfp.FingerprintField] = fp
	data, err := document(fields, body)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to serialize front matter").
			WithContext("path", rel).
			Build()
	}
	return writeFileAtomic(filepath.Join(w.root, filepath.FromSlash(rel)), data)
}

var _ Writer = (*HugoWriter)(nil)

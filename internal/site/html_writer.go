package site

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"path/filepath"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/posts"
)

//go:embed templates/*.html templates/style.css
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"tagURL": func(r Routes, tag string) string { return r.Tag(tag, 1) },
	"date": func(p posts.Post) string {
		if t := p.PublishedAt(); !t.IsZero() {
			return t.Format("January 2, 2006")
		}
		return p.Date
	},
}

// HTMLWriter renders a static HTML site below root.
type HTMLWriter struct {
	root  string
	index *template.Template
	post  *template.Template
}

// NewHTMLWriter parses the embedded layouts. It panics if they are malformed.
func NewHTMLWriter(root string) *HTMLWriter {
	base := template.Must(template.New("base").Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html"))
	return &HTMLWriter{
		root:  root,
		index: template.Must(template.Must(base.Clone()).ParseFS(templatesFS, "templates/index.html")),
		post:  template.Must(template.Must(base.Clone()).ParseFS(templatesFS, "templates/post.html")),
	}
}

type pager struct {
	Page  int
	Total int
	Prev  string
	Next  string
}

type pageData struct {
	Site        *Site
	Title       string
	Description string
	Canonical   string
	Heading     string
	Posts       []RenderedPost
	Ranked      []RenderedPost
	Pager       pager
	Post        *RenderedPost
	Body        template.HTML
}

// WriteSite writes index pages, tag pages and one page per post. It returns the
// number of pages written.
func (w *HTMLWriter) WriteSite(ctx context.Context, s *Site) (int, error) {
	written := 0
	emit := func(route string, tmpl *template.Template, data pageData) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data.Site = s
		if s.BaseURL != "" {
			data.Canonical = s.BaseURL + route
		}
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
			return errors.WrapError(err, errors.CategoryRender, "failed to execute template").
				WithContext("route", route).
				Build()
		}
		if err := writeFileAtomic(filepath.Join(w.root, filepath.FromSlash(File(route))), buf.Bytes()); err != nil {
			return err
		}
		written++
		return nil
	}

	for i := range s.Posts {
		p := &s.Posts[i]
		data := pageData{Title: p.Title, Description: p.Excerpt, Post: p, Body: template.HTML(p.HTML)} // #nosec G203 -- rendered from escaped rich text
		if err := emit(p.URL, w.post, data); err != nil {
			return written, withPost(err, p.Post)
		}
	}

	total := pageCount(len(s.Posts), s.PostsPerPage)
	for n := 1; n <= total; n++ {
		data := pageData{
			Description: s.Description,
			Posts:       paginate(s.Posts, n, s.PostsPerPage),
			Ranked:      s.Ranked,
			Pager:       newPager(n, total, s.Routes.Page),
		}
		if err := emit(s.Routes.Page(n), w.index, data); err != nil {
			return written, err
		}
	}

	for _, tag := range s.Tags {
		tagged := withTag(s.Posts, tag.Name)
		total := pageCount(len(tagged), s.PostsPerPage)
		for n := 1; n <= total; n++ {
			data := pageData{
				Title:   tag.Name,
				Heading: tag.Name,
				Posts:   paginate(tagged, n, s.PostsPerPage),
				Pager:   newPager(n, total, func(n int) string { return s.Routes.Tag(tag.Name, n) }),
			}
			if err := emit(s.Routes.Tag(tag.Name, n), w.index, data); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// WriteRoot writes the stylesheet and, for multilingual sites, a root page
// redirecting to the first language.
func (w *HTMLWriter) WriteRoot(ctx context.Context, langs []string) error {
	css, err := templatesFS.ReadFile("templates/style.css")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "embedded stylesheet missing").Build()
	}
	if err := writeFileAtomic(filepath.Join(w.root, "style.css"), css); err != nil {
		return err
	}
	if len(langs) == 0 || langs[0] == "" {
		return nil
	}
	target := Routes{Lang: langs[0]}.Home()
	redirect := `<!DOCTYPE html><meta charset="utf-8"><meta http-equiv="refresh" content="0; url=` +
		template.HTMLEscapeString(target) + `"><link rel="canonical" href="` + template.HTMLEscapeString(target) + `">` + "\n"
	return writeFileAtomic(filepath.Join(w.root, "index.html"), []byte(redirect))
}

func newPager(n, total int, route func(int) string) pager {
	p := pager{Page: n, Total: total}
	if n > 1 {
		p.Prev = route(n - 1)
	}
	if n < total {
		p.Next = route(n + 1)
	}
	return p
}

// pageCount is at least 1 so an empty blog still gets a home page.
func pageCount(count, perPage int) int {
	return max(posts.PageCount(count, perPage), 1)
}

func paginate(ps []RenderedPost, page, perPage int) []RenderedPost {
	start := (page - 1) * perPage
	if start >= len(ps) || start < 0 {
		return nil
	}
	return ps[start:min(start+perPage, len(ps))]
}

func withTag(ps []RenderedPost, tag string) []RenderedPost {
	var out []RenderedPost
	for _, p := range ps {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

var _ Writer = (*HTMLWriter)(nil)

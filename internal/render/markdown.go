package render

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/notionblog/internal/blocks"
)

// Options resolves references while rendering. Nil functions fall back to
// emitting the remote value unchanged.
type Options struct {
	// PageLink maps a page id to the URL and title of the generated post.
	PageLink func(pageID string) (href, title string, ok bool)
	// MediaURL maps a remote media URL to the URL to emit, typically a local asset path.
	MediaURL func(remote string) string
}

// Document is a render-ready post body.
type Document struct {
	Nodes    []Node
	Outline  []OutlineEntry
	Markdown string
}

// Markdown renders an assembled tree. Top-level headings form the outline used by
// table_of_contents blocks; each nesting level is grouped separately.
func Markdown(tree []blocks.Block, opts Options) Document {
	nodes := GroupBlocks(tree)
	w := &writer{opts: opts, outline: Outline(nodes)}
	return Document{Nodes: nodes, Outline: w.outline, Markdown: w.nodes(nodes)}
}

type writer struct {
	opts    Options
	outline []OutlineEntry
}

func (w *writer) pageLink(id string) (string, string, bool) {
	if w.opts.PageLink == nil {
		return "", "", false
	}
	return w.opts.PageLink(id)
}

func (w *writer) media(remote string) string {
	if w.opts.MediaURL == nil || remote == "" {
		return remote
	}
	return w.opts.MediaURL(remote)
}

// linkURL rewrites workspace-relative page links ("/<page id>") to generated posts.
func (w *writer) linkURL(href string) string {
	if id, ok := strings.CutPrefix(href, "/"); ok && !strings.Contains(id, "/") {
		id, _, _ = strings.Cut(id, "#")
		if page, _, ok := w.pageLink(id); ok {
			return page
		}
	}
	return href
}

// nodes renders siblings separated by blank lines.
func (w *writer) nodes(ns []Node) string {
	chunks := make([]string, 0, len(ns))
	for _, n := range ns {
		if c := strings.TrimRight(w.node(n), "\n"); c != "" {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) == 0 {
		return ""
	}
	return strings.Join(chunks, "\n\n") + "\n"
}

// children groups and renders the children of b.
func (w *writer) children(b blocks.Block) string {
	return w.nodes(GroupBlocks(b.Children()))
}

func (w *writer) node(n Node) string {
	switch v := n.(type) {
	case *List:
		return w.list(v)
	case blocks.Paragraph:
		text := w.richText(v.RichText, inMarkdown)
		if c := colorClass(v.Color); c != "" && text != "" {
			text = `<span class="` + c + `">` + text + `</span>`
		}
		if kids := w.children(v); kids != "" {
			return text + "\n\n" + wrapHTML(`<div class="indent">`, kids, `</div>`)
		}
		return text
	case blocks.Heading:
		return w.heading(v)
	case blocks.Quote:
		body := w.richText(v.RichText, inMarkdown)
		if kids := w.children(v); kids != "" {
			body += "\n\n" + kids
		}
		return prefixLines(strings.TrimRight(body, "\n"), "> ", ">")
	case blocks.Callout:
		icon := ""
		if v.Icon != nil {
			switch {
			case v.Icon.Emoji != "":
				icon = `<span class="callout-icon">` + escapeText(v.Icon.Emoji, inHTML) + `</span>`
			case v.Icon.Image != nil:
				icon = `<img class="callout-icon" src="` + attr(w.media(v.Icon.Image.URL())) + `" alt="">`
			}
		}
		open := `<div class="` + classes("callout", colorClass(v.Color)) + `">` + icon +
			`<div class="callout-text">` + w.richText(v.RichText, inHTML) + `</div>`
		return wrapHTML(open, w.children(v), `</div>`)
	case blocks.Toggle:
		open := "<details class=\"toggle\">\n<summary>" + w.richText(v.RichText, inHTML) + "</summary>"
		return wrapHTML(open, w.children(v), "</details>")
	case blocks.Code:
		return w.code(v)
	case blocks.Equation:
		return `<div class="equation">$$` + escapeText(v.Expression, inHTML) + `$$</div>`
	case blocks.Image:
		src := w.media(v.Source.URL())
		if src == "" {
			return ""
		}
		alt := attr(blocks.Plain(v.Caption))
		return figure("image", `<img src="`+attr(src)+`" alt="`+alt+`" loading="lazy">`, w.caption(v.Caption))
	case blocks.Video:
		return w.video(v)
	case blocks.File:
		src := w.media(v.Source.URL())
		if src == "" {
			return ""
		}
		name := v.Name
		if name == "" {
			name = fileName(v.Source.URL())
		}
		return figure("file", `<a href="`+attr(src)+`" download>`+escapeText(name, inHTML)+`</a>`, w.caption(v.Caption))
	case blocks.Embed:
		return figure("embed", `<iframe src="`+attr(v.URL)+`" loading="lazy" allowfullscreen></iframe>`, w.caption(v.Caption))
	case blocks.Bookmark:
		return figure("bookmark", `<a href="`+attr(v.URL)+`">`+escapeText(v.URL, inHTML)+`</a>`, w.caption(v.Caption))
	case blocks.LinkPreview:
		return `<div class="link-preview"><a href="` + attr(v.URL) + `">` + escapeText(v.URL, inHTML) + `</a></div>`
	case blocks.Table:
		return w.table(v)
	case blocks.ColumnList:
		return w.columns(v)
	case blocks.TableOfContents:
		return w.toc(v)
	case blocks.LinkToPage:
		href, title, ok := w.pageLink(v.PageID)
		if !ok {
			return fmt.Sprintf("<!-- link to unknown page %s -->", v.PageID)
		}
		return `<div class="link-to-page"><a href="` + attr(href) + `">` + escapeText(title, inHTML) + `</a></div>`
	case blocks.SyncedBlock:
		return w.children(v)
	case blocks.Divider:
		return "---"
	case blocks.Unsupported:
		return fmt.Sprintf("<!-- unsupported block: %s -->", strings.ReplaceAll(v.Type, "--", ""))
	case blocks.TableRow, blocks.Column:
		// Rendered by their containers.
		return w.children(v.(blocks.Block))
	case blocks.BulletedListItem, blocks.NumberedListItem, blocks.ToDo:
		return w.list(&List{ListKind: ListKindFor(n.Kind()), Items: []blocks.Block{v.(blocks.Block)}})
	}
	return ""
}

func (w *writer) heading(h blocks.Heading) string {
	level := min(max(h.Level, 1), 6)
	anchor := Anchor(h.ID())
	kids := w.children(h)
	if h.IsToggleable && kids != "" {
		open := fmt.Sprintf("<details class=\"toggle-heading\">\n<summary><h%d id=\"%s\">%s</h%d></summary>",
			level, anchor, w.richText(h.RichText, inHTML), level)
		return wrapHTML(open, kids, "</details>")
	}
	line := strings.Repeat("#", level) + " " + w.richText(h.RichText, inMarkdown) + " {#" + anchor + "}"
	if kids != "" {
		line += "\n\n" + kids
	}
	return line
}

func (w *writer) list(l *List) string {
	var b strings.Builder
	for i, item := range l.Items {
		var marker string
		var spans []blocks.RichText
		switch v := item.(type) {
		case blocks.BulletedListItem:
			marker, spans = "- ", v.RichText
		case blocks.NumberedListItem:
			marker, spans = fmt.Sprintf("%d. ", i+1), v.RichText
		case blocks.ToDo:
			marker, spans = "- [ ] ", v.RichText
			if v.Checked {
				marker = "- [x] "
			}
		default:
			continue
		}
		text := w.richText(spans, inMarkdown)
		if text == "" {
			text = "&nbsp;"
		}
		b.WriteString(marker + text + "\n")
		nested := GroupBlocks(item.Children())
		if kids := w.nodes(nested); kids != "" {
			indent := strings.Repeat(" ", len(marker))
			if l.ListKind == KindToDoList {
				indent = "  "
			}
			// A nested list may follow the item line directly and keeps the list tight.
			if _, ok := nested[0].(*List); !ok {
				b.WriteString("\n")
			}
			b.WriteString(prefixLines(strings.TrimRight(kids, "\n"), indent, "") + "\n")
		}
	}
	return b.String()
}

func (w *writer) code(c blocks.Code) string {
	body := blocks.Plain(c.RichText)
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	lang := strings.ReplaceAll(c.Language, " ", "-")
	if lang == "plain text" || lang == "plain-text" {
		lang = ""
	}
	out := fence + lang + "\n" + strings.TrimRight(body, "\n") + "\n" + fence
	if caption := w.caption(c.Caption); caption != "" {
		out += "\n\n<div class=\"code-caption\">" + caption + "</div>"
	}
	return out
}

func (w *writer) video(v blocks.Video) string {
	remote := v.Source.URL()
	if remote == "" {
		return ""
	}
	if id := youTubeID(remote); id != "" && v.Source.External != nil {
		frame := `<iframe src="https://www.youtube.com/embed/` + attr(id) + `" loading="lazy" allowfullscreen></iframe>`
		return figure("video", frame, w.caption(v.Caption))
	}
	return figure("video", `<video controls preload="metadata" src="`+attr(w.media(remote))+`"></video>`, w.caption(v.Caption))
}

func (w *writer) table(t blocks.Table) string {
	var b strings.Builder
	b.WriteString("<table class=\"table\">\n")
	rows := t.Rows()
	start := 0
	if t.HasColumnHeader && len(rows) > 0 {
		b.WriteString("<thead>" + w.row(rows[0], true, false) + "</thead>\n")
		start = 1
	}
	b.WriteString("<tbody>\n")
	for _, r := range rows[start:] {
		b.WriteString(w.row(r, false, t.HasRowHeader) + "\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

func (w *writer) row(r blocks.TableRow, header, rowHeader bool) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for i, cell := range r.Cells {
		text := w.richText(cell, inHTML)
		switch {
		case header:
			b.WriteString(`<th scope="col">` + text + "</th>")
		case rowHeader && i == 0:
			b.WriteString(`<th scope="row">` + text + "</th>")
		default:
			b.WriteString("<td>" + text + "</td>")
		}
	}
	b.WriteString("</tr>")
	return b.String()
}

func (w *writer) columns(cl blocks.ColumnList) string {
	cols := cl.Columns()
	if len(cols) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<div class=\"columns columns-%d\">", len(cols))
	for _, col := range cols {
		b.WriteString("\n" + wrapHTML(`<div class="column">`, w.children(col), "</div>"))
	}
	b.WriteString("\n</div>")
	return b.String()
}

func (w *writer) toc(t blocks.TableOfContents) string {
	if len(w.outline) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<nav class="` + classes("toc", colorClass(t.Color)) + "\">\n<ul>\n")
	for _, e := range w.outline {
		fmt.Fprintf(&b, "<li class=\"toc-level-%d\"><a href=\"#%s\">%s</a></li>\n", e.Level, e.Anchor, escapeText(e.Text, inHTML))
	}
	b.WriteString("</ul>\n</nav>")
	return b.String()
}

func (w *writer) caption(spans []blocks.RichText) string {
	return w.richText(spans, inHTML)
}

func figure(class, body, caption string) string {
	out := `<figure class="` + class + `">` + "\n" + body
	if caption != "" {
		out += "\n<figcaption>" + caption + "</figcaption>"
	}
	return out + "\n</figure>"
}

// wrapHTML places markdown between an opening and closing raw HTML line, separated
// by blank lines so the inner content is parsed as markdown.
func wrapHTML(open, inner, closing string) string {
	inner = strings.TrimRight(inner, "\n")
	if inner == "" {
		return open + "\n" + closing
	}
	return open + "\n\n" + inner + "\n\n" + closing
}

func prefixLines(s, prefix, blankPrefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = blankPrefix
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func classes(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

func fileName(remote string) string {
	u, err := url.Parse(remote)
	if err != nil || u.Path == "" {
		return "download"
	}
	name, err := url.PathUnescape(path.Base(u.Path))
	if err != nil {
		return path.Base(u.Path)
	}
	return name
}

func youTubeID(remote string) string {
	u, err := url.Parse(remote)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			return u.Query().Get("v")
		}
		if id, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
			return id
		}
	case "youtu.be":
		return strings.TrimPrefix(u.Path, "/")
	}
	return ""
}

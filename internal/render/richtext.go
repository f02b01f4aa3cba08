package render

import (
	"html"
	"strings"

	"git.home.luguber.info/inful/notionblog/internal/blocks"
)

// Characters escaped with a backslash when text lands in markdown context.
const markdownSpecial = "\\`*_{}[]()#+-.!|~"

// textContext selects how span text is escaped.
type textContext int

const (
	// inMarkdown is text goldmark parses: HTML-escaped and backslash-escaped.
	inMarkdown textContext = iota
	// inHTML is text inside a raw HTML block: HTML-escaped only.
	inHTML
)

func escapeText(s string, ctx textContext) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		case '\n':
			b.WriteString("<br>")
		case '\r':
		default:
			if ctx == inMarkdown && strings.ContainsRune(markdownSpecial, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func attr(s string) string { return html.EscapeString(s) }

// colorClass maps a color name to a CSS class; "default" and "" map to "".
func colorClass(color string) string {
	if color == "" || color == "default" {
		return ""
	}
	if base, ok := strings.CutSuffix(color, "_background"); ok {
		return "bg-" + base
	}
	return "color-" + color
}

func (w *writer) richText(spans []blocks.RichText, ctx textContext) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(w.span(s, ctx))
	}
	return b.String()
}

func (w *writer) span(s blocks.RichText, ctx textContext) string {
	var inner string
	switch {
	case s.Equation != nil:
		expr := attr(s.Equation.Expression)
		inner = `<span class="equation" data-tex="` + expr + `">` + escapeText(s.Equation.Expression, ctx) + `</span>`
	case s.Mention != nil && s.Mention.Page != nil:
		text := escapeText(s.PlainText, ctx)
		if href, title, ok := w.pageLink(s.Mention.Page.ID); ok {
			if text == "" {
				text = escapeText(title, ctx)
			}
			inner = `<a class="mention" href="` + attr(href) + `">` + text + `</a>`
		} else {
			inner = `<span class="mention">` + text + `</span>`
		}
	case s.Text != nil:
		inner = escapeText(s.Text.Content, ctx)
	default:
		inner = escapeText(s.PlainText, ctx)
	}

	a := s.Annotations
	if a.Code {
		inner = "<code>" + inner + "</code>"
	}
	if a.Bold {
		inner = "<strong>" + inner + "</strong>"
	}
	if a.Italic {
		inner = "<em>" + inner + "</em>"
	}
	if a.Strikethrough {
		inner = "<del>" + inner + "</del>"
	}
	if a.Underline {
		inner = "<u>" + inner + "</u>"
	}
	if c := colorClass(a.Color); c != "" {
		inner = `<span class="` + c + `">` + inner + `</span>`
	}

	href := s.Href
	if s.Text != nil && s.Text.Link != nil {
		href = s.Text.Link.URL
	}
	if href != "" && s.Mention == nil {
		inner = `<a href="` + attr(w.linkURL(href)) + `">` + inner + `</a>`
	}
	return inner
}

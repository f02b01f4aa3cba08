package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionblog/internal/blocks"
	"git.home.luguber.info/inful/notionblog/internal/notion"
)

func spans(s string) []notion.RichText {
	return []notion.RichText{{Type: "text", PlainText: s, Text: &notion.Text{Content: s}}}
}

func withKids(b blocks.Block, kids ...blocks.Block) blocks.Block {
	return blocks.Attach(b, kids)
}

func renderHTML(t *testing.T, tree []blocks.Block, opts Options) string {
	t.Helper()
	out, err := Body(Markdown(tree, opts))
	require.NoError(t, err)
	return out
}

func TestMarkdownEscapesParagraphText(t *testing.T) {
	p := blocks.Normalize(notion.Block{ID: "p", Type: "paragraph", Paragraph: &notion.TextBlock{RichText: spans("2*3 <b> & [x]")}})

	doc := Markdown([]blocks.Block{p}, Options{})
	assert.Equal(t, "2\\*3 &lt;b&gt; &amp; \\[x\\]\n", doc.Markdown)

	out := renderHTML(t, []blocks.Block{p}, Options{})
	assert.Equal(t, "<p>2*3 &lt;b&gt; &amp; [x]</p>\n", out)
}

func TestMarkdownAnnotationsAndLinks(t *testing.T) {
	href := "https://example.com"
	p := blocks.Normalize(notion.Block{ID: "p", Type: "paragraph", Paragraph: &notion.TextBlock{RichText: []notion.RichText{{
		Type:        "text",
		PlainText:   "go",
		Href:        &href,
		Annotations: notion.Annotations{Bold: true, Italic: true, Color: "red"},
		Text:        &notion.Text{Content: "go", Link: &notion.Link{URL: href}},
	}}}})

	out := renderHTML(t, []blocks.Block{p}, Options{})
	assert.Contains(t, out, `<a href="https://example.com"><span class="color-red"><em><strong>go</strong></em></span></a>`)
}

func TestMarkdownRewritesPageLinks(t *testing.T) {
	href := "/0123abcd"
	p := blocks.Normalize(notion.Block{ID: "p", Type: "paragraph", Paragraph: &notion.TextBlock{RichText: []notion.RichText{
		{Type: "text", PlainText: "see", Href: &href, Text: &notion.Text{Content: "see", Link: &notion.Link{URL: href}}},
		{Type: "mention", PlainText: "Other", Mention: &notion.Mention{Type: "page", Page: &notion.PageReference{ID: "0123abcd"}}},
	}}})
	opts := Options{PageLink: func(id string) (string, string, bool) {
		if id == "0123abcd" {
			return "/en/posts/other/", "Other", true
		}
		return "", "", false
	}}

	out := renderHTML(t, []blocks.Block{p}, opts)
	assert.Contains(t, out, `<a href="/en/posts/other/">see</a>`)
	assert.Contains(t, out, `<a class="mention" href="/en/posts/other/">Other</a>`)
}

func TestMarkdownHeadingsCarryAnchors(t *testing.T) {
	h := blocks.Normalize(notion.Block{ID: "ab-cd", Type: "heading_2", Heading2: &notion.HeadingBlock{RichText: spans("Intro")}})

	doc := Markdown([]blocks.Block{h}, Options{})
	assert.Equal(t, "## Intro {#h-abcd}\n", doc.Markdown)
	require.Len(t, doc.Outline, 1)
	assert.Equal(t, OutlineEntry{ID: "ab-cd", Level: 2, Text: "Intro", Anchor: "h-abcd"}, doc.Outline[0])

	out := renderHTML(t, []blocks.Block{h}, Options{})
	assert.Equal(t, "<h2 id=\"h-abcd\">Intro</h2>\n", out)
}

func TestToggleableHeadingWithChildren(t *testing.T) {
	h := blocks.Normalize(notion.Block{ID: "h1", Type: "heading_1", HasChildren: true, Heading1: &notion.HeadingBlock{RichText: spans("More"), IsToggleable: true}})
	h = withKids(h, raw("inner", "paragraph"))

	out := renderHTML(t, []blocks.Block{h}, Options{})
	assert.Contains(t, out, `<details class="toggle-heading">`)
	assert.Contains(t, out, `<summary><h1 id="h-h1">More</h1></summary>`)
	assert.Contains(t, out, "<p>inner</p>")
}

func TestNestedNumberedListsCycleMarkers(t *testing.T) {
	n3 := raw("n3", "numbered_list_item")
	n2 := withKids(raw("n2", "numbered_list_item"), n3)
	n1 := withKids(raw("n1", "numbered_list_item"), n2)
	tree := []blocks.Block{n1, raw("n1b", "numbered_list_item")}

	doc := Markdown(tree, Options{})
	assert.Equal(t, "1. n1\n   1. n2\n      1. n3\n2. n1b\n", doc.Markdown)

	out := renderHTML(t, tree, Options{})
	assert.Contains(t, out, `<ol type="1">`)
	assert.Contains(t, out, `<ol type="a">`)
	assert.Contains(t, out, `<ol type="i">`)
	assert.Contains(t, out, "<li>n1b</li>")
}

func TestBulletedListWithParagraphChild(t *testing.T) {
	b1 := withKids(raw("b1", "bulleted_list_item"), raw("detail", "paragraph"))
	tree := []blocks.Block{b1, raw("b2", "bulleted_list_item"), raw("after", "paragraph")}

	doc := Markdown(tree, Options{})
	assert.Equal(t, "- b1\n\n  detail\n- b2\n\nafter\n", doc.Markdown)

	out := renderHTML(t, tree, Options{})
	assert.Contains(t, out, "<ul>")
	assert.Contains(t, out, "<p>detail</p>")
	assert.Contains(t, out, "<p>after</p>")
}

func TestToDoList(t *testing.T) {
	done := blocks.Normalize(notion.Block{ID: "t1", Type: "to_do", ToDo: &notion.ToDoBlock{RichText: spans("ship"), Checked: true}})
	open := blocks.Normalize(notion.Block{ID: "t2", Type: "to_do", ToDo: &notion.ToDoBlock{RichText: spans("test")}})

	doc := Markdown([]blocks.Block{done, open}, Options{})
	assert.Equal(t, "- [x] ship\n- [ ] test\n", doc.Markdown)

	out := renderHTML(t, []blocks.Block{done, open}, Options{})
	assert.Contains(t, out, `type="checkbox"`)
	assert.Contains(t, out, "checked")
}

func TestQuoteWithChildren(t *testing.T) {
	q := blocks.Normalize(notion.Block{ID: "q", Type: "quote", HasChildren: true, Quote: &notion.TextBlock{RichText: spans("said")}})
	q = withKids(q, raw("more", "paragraph"))

	doc := Markdown([]blocks.Block{q}, Options{})
	assert.Equal(t, "> said\n>\n> more\n", doc.Markdown)
}

func TestCodeFenceOutgrowsContent(t *testing.T) {
	c := blocks.Normalize(notion.Block{ID: "c", Type: "code", Code: &notion.CodeBlock{
		RichText: spans("```\nfmt.Println(\"<hi>\")"),
		Language: "go",
	}})

	doc := Markdown([]blocks.Block{c}, Options{})
	assert.Equal(t, "````go\n```\nfmt.Println(\"<hi>\")\n````\n", doc.Markdown)

	out := renderHTML(t, []blocks.Block{c}, Options{})
	assert.Contains(t, out, `<code class="language-go">`)
	assert.Contains(t, out, "&lt;hi&gt;")
}

func TestTableHeaders(t *testing.T) {
	tbl := blocks.Normalize(notion.Block{ID: "t", Type: "table", HasChildren: true, Table: &notion.TableBlock{TableWidth: 2, HasColumnHeader: true, HasRowHeader: true}})
	row := func(id string, a, b string) blocks.TableRow {
		r := blocks.Normalize(notion.Block{ID: id, Type: "table_row", TableRow: &notion.TableRowBlock{Cells: [][]notion.RichText{spans(a), spans(b)}}})
		return r.(blocks.TableRow)
	}
	full := tbl.(blocks.Table).WithRows([]blocks.TableRow{row("r1", "k", "v"), row("r2", "a", "1")})

	out := renderHTML(t, []blocks.Block{full}, Options{})
	assert.Contains(t, out, `<thead><tr><th scope="col">k</th><th scope="col">v</th></tr></thead>`)
	assert.Contains(t, out, `<tr><th scope="row">a</th><td>1</td></tr>`)
}

func TestTableOfContentsListsTopLevelHeadings(t *testing.T) {
	toc := blocks.Normalize(notion.Block{ID: "toc", Type: "table_of_contents", TableOfContents: &notion.ColorBlock{}})
	h1 := raw("h-one", "heading_1")
	h2 := raw("h-two", "heading_2")

	out := renderHTML(t, []blocks.Block{toc, h1, h2}, Options{})
	assert.Contains(t, out, `<nav class="toc">`)
	assert.Contains(t, out, `<li class="toc-level-1"><a href="#h-hone">h-one</a></li>`)
	assert.Contains(t, out, `<li class="toc-level-2"><a href="#h-htwo">h-two</a></li>`)
}

func TestMediaUsesMediaURL(t *testing.T) {
	img := blocks.Normalize(notion.Block{ID: "i", Type: "image", Image: &notion.FileObject{
		Type:    "file",
		Caption: spans("a cat"),
		File:    &notion.HostedFile{URL: "https://files.example.com/x/cat.png?sig=1"},
	}})
	opts := Options{MediaURL: func(remote string) string { return "/notion/x/cat.png" }}

	out := renderHTML(t, []blocks.Block{img}, opts)
	assert.Contains(t, out, `<img src="/notion/x/cat.png" alt="a cat" loading="lazy">`)
	assert.Contains(t, out, "<figcaption>a cat</figcaption>")
}

func TestVideoEmbedsYouTube(t *testing.T) {
	v := blocks.Normalize(notion.Block{ID: "v", Type: "video", Video: &notion.FileObject{
		Type:     "external",
		External: &notion.ExternalFile{URL: "https://www.youtube.com/watch?v=abc123"},
	}})

	out := renderHTML(t, []blocks.Block{v}, Options{})
	assert.Contains(t, out, `src="https://www.youtube.com/embed/abc123"`)
}

func TestUnresolvedLinkToPageAndUnsupported(t *testing.T) {
	link := blocks.Normalize(notion.Block{ID: "l", Type: "link_to_page", LinkToPage: &notion.LinkToPageBlock{Type: "page_id", PageID: "missing"}})
	unk := blocks.Normalize(notion.Block{ID: "u", Type: "ai_block"})

	doc := Markdown([]blocks.Block{link, unk}, Options{})
	assert.Contains(t, doc.Markdown, "<!-- link to unknown page missing -->")
	assert.Contains(t, doc.Markdown, "<!-- unsupported block: ai_block -->")
}

func TestColumnsAndToggleWrapChildren(t *testing.T) {
	col := func(id string, kid blocks.Block) blocks.Column {
		c := blocks.Normalize(notion.Block{ID: id, Type: "column", HasChildren: true, Column: &notion.EmptyBlock{}})
		return withKids(c, kid).(blocks.Column)
	}
	cl := blocks.Normalize(notion.Block{ID: "cl", Type: "column_list", HasChildren: true, ColumnList: &notion.EmptyBlock{}})
	cols := cl.(blocks.ColumnList).WithColumns([]blocks.Column{col("c1", raw("left", "paragraph")), col("c2", raw("right", "paragraph"))})
	toggle := withKids(raw("tg", "toggle"), raw("hidden", "paragraph"))

	out := renderHTML(t, []blocks.Block{cols, toggle}, Options{})
	assert.Contains(t, out, `<div class="columns columns-2">`)
	assert.Contains(t, out, "<p>left</p>")
	assert.Contains(t, out, "<p>right</p>")
	assert.Contains(t, out, "<summary>tg</summary>")
	assert.Contains(t, out, "<p>hidden</p>")
}

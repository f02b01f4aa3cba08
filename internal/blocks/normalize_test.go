package blocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionblog/internal/notion"
)

func span(s string) []notion.RichText {
	return []notion.RichText{{Type: "text", PlainText: s, Text: &notion.Text{Content: s}}}
}

func TestNormalizeKnownKinds(t *testing.T) {
	text := &notion.TextBlock{RichText: span("x")}
	media := &notion.FileObject{Type: "external", External: &notion.ExternalFile{URL: "https://e/x.png"}}
	link := &notion.URLBlock{URL: "https://example.com"}

	raws := []notion.Block{
		{Type: "paragraph", Paragraph: text},
		{Type: "heading_1", Heading1: &notion.HeadingBlock{RichText: span("h")}},
		{Type: "heading_2", Heading2: &notion.HeadingBlock{RichText: span("h")}},
		{Type: "heading_3", Heading3: &notion.HeadingBlock{RichText: span("h")}},
		{Type: "bulleted_list_item", BulletedListItem: text},
		{Type: "numbered_list_item", NumberedListItem: text},
		{Type: "to_do", ToDo: &notion.ToDoBlock{RichText: span("t"), Checked: true}},
		{Type: "image", Image: media},
		{Type: "video", Video: media},
		{Type: "file", File: media},
		{Type: "code", Code: &notion.CodeBlock{RichText: span("fmt.Println()"), Language: "go"}},
		{Type: "quote", Quote: text},
		{Type: "equation", Equation: &notion.EquationBlock{Expression: "e=mc^2"}},
		{Type: "callout", Callout: &notion.CalloutBlock{RichText: span("c"), Icon: &notion.Icon{Type: "emoji", Emoji: "💡"}}},
		{Type: "embed", Embed: link},
		{Type: "bookmark", Bookmark: link},
		{Type: "link_preview", LinkPreview: link},
		{Type: "table", Table: &notion.TableBlock{TableWidth: 2}},
		{Type: "table_row", TableRow: &notion.TableRowBlock{Cells: [][]notion.RichText{span("a"), span("b")}}},
		{Type: "column_list", ColumnList: &notion.EmptyBlock{}},
		{Type: "column", Column: &notion.EmptyBlock{}},
		{Type: "table_of_contents", TableOfContents: &notion.ColorBlock{}},
		{Type: "link_to_page", LinkToPage: &notion.LinkToPageBlock{Type: "page_id", PageID: "p1"}},
		{Type: "synced_block", SyncedBlock: &notion.SyncedBlockBlock{}},
		{Type: "toggle", Toggle: text},
		{Type: "divider"},
	}

	for i, raw := range raws {
		raw.ID = raw.Type + "-id"
		raw.HasChildren = i%2 == 0
		t.Run(raw.Type, func(t *testing.T) {
			b := Normalize(raw)
			assert.Equal(t, Kind(raw.Type), b.Kind())
			assert.Equal(t, raw.ID, b.ID())
			assert.Equal(t, raw.HasChildren, b.HasChildren())
			assert.Empty(t, b.Children())
		})
	}
}

func TestNormalizeUnknownIsUnsupported(t *testing.T) {
	b := Normalize(notion.Block{ID: "u1", Type: "ai_block", HasChildren: true})
	u, ok := b.(Unsupported)
	require.True(t, ok)
	assert.Equal(t, KindUnsupported, u.Kind())
	assert.Equal(t, "u1", u.ID())
	assert.True(t, u.HasChildren())
	assert.Equal(t, "ai_block", u.Type)
}

func TestNormalizeDegradesMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  notion.Block
	}{
		{"missing payload", notion.Block{ID: "a", Type: "paragraph"}},
		{"link to database", notion.Block{ID: "b", Type: "link_to_page", LinkToPage: &notion.LinkToPageBlock{Type: "database_id", DatabaseID: "d"}}},
		{"link without target", notion.Block{ID: "c", Type: "link_to_page"}},
		{"empty type", notion.Block{ID: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Normalize(tt.raw)
			assert.Equal(t, KindUnsupported, b.Kind())
			assert.Equal(t, tt.raw.ID, b.ID())
		})
	}
}

func TestNormalizeHeadingLevel(t *testing.T) {
	b := Normalize(notion.Block{ID: "h", Type: "heading_2", Heading2: &notion.HeadingBlock{RichText: span("Title"), IsToggleable: true}})
	h, ok := b.(Heading)
	require.True(t, ok)
	assert.Equal(t, 2, h.Level)
	assert.True(t, h.IsToggleable)
	assert.Equal(t, "Title", Plain(h.RichText))
	assert.True(t, h.Kind().IsHeading())
}

func TestBuildFileSource(t *testing.T) {
	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	ext := BuildFileSource(&notion.FileObject{Type: "external", External: &notion.ExternalFile{URL: "https://cdn/x.png"}})
	require.NotNil(t, ext.External)
	assert.Nil(t, ext.File)
	assert.Equal(t, "https://cdn/x.png", ext.URL())
	assert.False(t, ext.Expired(expiry.Add(time.Hour)))

	hosted := BuildFileSource(&notion.FileObject{
		Type:     "file",
		File:     &notion.HostedFile{URL: "https://s3/x.png?sig", ExpiryTime: expiry},
		External: &notion.ExternalFile{URL: "https://ignored"},
	})
	assert.Nil(t, hosted.External)
	require.NotNil(t, hosted.File)
	assert.Equal(t, expiry, hosted.File.ExpiryTime)
	assert.False(t, hosted.Expired(expiry.Add(-time.Minute)))
	assert.True(t, hosted.Expired(expiry))
}

func TestBuildRichText(t *testing.T) {
	href := "https://example.com"
	spans := []notion.RichText{
		{
			Type: "text", PlainText: "link", Href: &href,
			Annotations: notion.Annotations{Bold: true, Italic: true, Strikethrough: true, Underline: true, Code: true, Color: "red"},
			Text:        &notion.Text{Content: "link", Link: &notion.Link{URL: href}},
		},
		{Type: "equation", PlainText: "x^2", Equation: &notion.InlineMath{Expression: "x^2"}},
		{Type: "mention", PlainText: "Other", Mention: &notion.Mention{Type: "page", Page: &notion.PageReference{ID: "p2"}}},
		{Type: "mention", PlainText: "@me", Mention: &notion.Mention{Type: "user"}},
		{Type: "unknown", PlainText: "plain"},
	}

	out := BuildRichText(spans)
	require.Len(t, out, 5)

	assert.Equal(t, Annotations{Bold: true, Italic: true, Strikethrough: true, Underline: true, Code: true, Color: "red"}, out[0].Annotations)
	assert.Equal(t, href, out[0].Href)
	require.NotNil(t, out[0].Text)
	assert.Equal(t, href, out[0].Text.Link.URL)
	assert.Nil(t, out[0].Equation)
	assert.Nil(t, out[0].Mention)

	require.NotNil(t, out[1].Equation)
	assert.Nil(t, out[1].Text)
	assert.Equal(t, "x^2", out[1].Equation.Expression)

	require.NotNil(t, out[2].Mention)
	assert.Equal(t, "p2", out[2].Mention.Page.ID)

	require.NotNil(t, out[3].Mention)
	assert.Nil(t, out[3].Mention.Page)

	assert.Nil(t, out[4].Text)
	assert.Nil(t, out[4].Equation)
	assert.Nil(t, out[4].Mention)
	assert.Equal(t, "plain", out[4].PlainText)
}

func TestSyncedFrom(t *testing.T) {
	dup := Normalize(notion.Block{ID: "s", Type: "synced_block", SyncedBlock: &notion.SyncedBlockBlock{
		SyncedFrom: &notion.SyncedFrom{Type: "block_id", BlockID: "orig"},
	}})
	s, ok := dup.(SyncedBlock)
	require.True(t, ok)
	assert.Equal(t, "orig", s.SyncedFrom)
}

func TestAttachReturnsCopy(t *testing.T) {
	toggle := Normalize(notion.Block{ID: "t", Type: "toggle", HasChildren: true, Toggle: &notion.TextBlock{}})
	child := Normalize(notion.Block{ID: "c", Type: "paragraph", Paragraph: &notion.TextBlock{}})

	filled := Attach(toggle, []Block{child})
	assert.Empty(t, toggle.Children())
	require.Len(t, filled.Children(), 1)
	assert.Equal(t, "c", filled.Children()[0].ID())
	assert.IsType(t, Toggle{}, filled)

	code := Normalize(notion.Block{ID: "x", Type: "code", Code: &notion.CodeBlock{}})
	assert.False(t, AcceptsChildren(code))
	assert.Equal(t, code, Attach(code, []Block{child}))
}

func TestWithRowsAndColumns(t *testing.T) {
	table := Table{Base: newBase("t", KindTable, true), Width: 2}
	row := TableRow{Base: newBase("r", KindTableRow, false)}
	filled := table.WithRows([]TableRow{row})
	assert.Empty(t, table.Rows())
	require.Len(t, filled.Rows(), 1)
	require.Len(t, filled.Children(), 1)

	cl := ColumnList{Base: newBase("cl", KindColumnList, true)}
	col := Column{Base: newBase("c", KindColumn, true)}
	withCols := cl.WithColumns([]Column{col, col})
	assert.Len(t, withCols.Columns(), 2)
	assert.Empty(t, cl.Columns())
}

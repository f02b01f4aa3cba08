package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionblog/internal/blocks"
	"git.home.luguber.info/inful/notionblog/internal/notion"
)

func raw(id, typ string) blocks.Block {
	b := notion.Block{ID: id, Type: typ}
	tb := &notion.TextBlock{RichText: []notion.RichText{{Type: "text", PlainText: id, Text: &notion.Text{Content: id}}}}
	switch typ {
	case "paragraph":
		b.Paragraph = tb
	case "bulleted_list_item":
		b.BulletedListItem = tb
	case "numbered_list_item":
		b.NumberedListItem = tb
	case "to_do":
		b.ToDo = &notion.ToDoBlock{RichText: tb.RichText}
	case "quote":
		b.Quote = tb
	case "heading_1":
		b.Heading1 = &notion.HeadingBlock{RichText: tb.RichText}
	case "heading_2":
		b.Heading2 = &notion.HeadingBlock{RichText: tb.RichText}
	case "toggle":
		b.Toggle = tb
	case "divider":
	}
	return blocks.Normalize(b)
}

func TestGroupMergesAdjacentItems(t *testing.T) {
	in := []blocks.Block{
		raw("b1", "bulleted_list_item"),
		raw("b2", "bulleted_list_item"),
		raw("p", "paragraph"),
		raw("n1", "numbered_list_item"),
	}
	got := GroupBlocks(in)
	require.Len(t, got, 3)

	l1, ok := got[0].(*List)
	require.True(t, ok)
	assert.Equal(t, KindBulletedList, l1.Kind())
	assert.Len(t, l1.Items, 2)

	assert.Equal(t, blocks.KindParagraph, got[1].Kind())

	l2, ok := got[2].(*List)
	require.True(t, ok)
	assert.Equal(t, KindNumberedList, l2.Kind())
	assert.Len(t, l2.Items, 1)
}

func TestGroupSplitsOnKindChange(t *testing.T) {
	got := GroupBlocks([]blocks.Block{
		raw("b1", "bulleted_list_item"),
		raw("n1", "numbered_list_item"),
		raw("t1", "to_do"),
		raw("t2", "to_do"),
		raw("b2", "bulleted_list_item"),
	})
	kinds := make([]blocks.Kind, len(got))
	for i, n := range got {
		kinds[i] = n.Kind()
	}
	assert.Equal(t, []blocks.Kind{KindBulletedList, KindNumberedList, KindToDoList, KindBulletedList}, kinds)
	assert.Len(t, got[2].(*List).Items, 2)
}

func TestGroupWithoutListItemsIsIdentity(t *testing.T) {
	in := Nodes([]blocks.Block{raw("p1", "paragraph"), raw("q", "quote"), raw("d", "divider")})
	got := Group(in)
	assert.Equal(t, in, got)
}

func TestGroupIsIdempotent(t *testing.T) {
	once := GroupBlocks([]blocks.Block{
		raw("b1", "bulleted_list_item"),
		raw("b2", "bulleted_list_item"),
		raw("p", "paragraph"),
		raw("b3", "bulleted_list_item"),
	})
	twice := Group(once)
	require.Len(t, twice, len(once))
	for i := range once {
		if l, ok := once[i].(*List); ok {
			assert.Same(t, l, twice[i])
			continue
		}
		assert.Equal(t, once[i], twice[i])
	}
	assert.Len(t, once[0].(*List).Items, 2)
}

func TestGroupDoesNotMergeIntoExistingList(t *testing.T) {
	existing := &List{ListKind: KindBulletedList, Items: []blocks.Block{raw("b0", "bulleted_list_item")}}
	got := Group([]Node{existing, raw("b1", "bulleted_list_item")})
	require.Len(t, got, 2)
	assert.Len(t, existing.Items, 1)
	assert.Len(t, got[1].(*List).Items, 1)
}

func TestOutlineTopLevelOnly(t *testing.T) {
	nested := blocks.Attach(raw("tog", "toggle"), []blocks.Block{raw("inner", "heading_2")})
	nodes := GroupBlocks([]blocks.Block{raw("h1", "heading_1"), raw("p", "paragraph"), nested, raw("h2", "heading_2")})

	got := Outline(nodes)
	require.Len(t, got, 2)
	assert.Equal(t, "h1", got[0].ID)
	assert.Equal(t, 1, got[0].Level)
	assert.Equal(t, 2, got[1].Level)
	assert.Equal(t, "h2", got[1].Text)
	assert.Equal(t, Anchor("h2"), got[1].Anchor)
}

func TestMarkerStyle(t *testing.T) {
	assert.Equal(t, "1", MarkerStyle(1))
	assert.Equal(t, "a", MarkerStyle(2))
	assert.Equal(t, "i", MarkerStyle(3))
	assert.Equal(t, "1", MarkerStyle(4))
}

package notion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

// pagedTransport serves children in pages of one block.
type pagedTransport struct {
	children map[string][]Block
	pages    []Page
	db       *Database
}

func (p *pagedTransport) QueryDatabase(_ context.Context, _ string, _ DatabaseQuery, cursor string) (*List[Page], error) {
	if cursor == "" && len(p.pages) > 1 {
		return &List[Page]{Results: p.pages[:1], NextCursor: cursor1(), HasMore: true}, nil
	}
	if cursor != "" {
		return &List[Page]{Results: p.pages[1:]}, nil
	}
	return &List[Page]{Results: p.pages}, nil
}

func cursor1() *string { s := "1"; return &s }

func (p *pagedTransport) ListBlockChildren(_ context.Context, blockID, cursor string) (*List[Block], error) {
	all := p.children[blockID]
	i := 0
	if cursor != "" {
		i = 1
	}
	if i+1 < len(all) {
		return &List[Block]{Results: all[i : i+1], NextCursor: cursor1(), HasMore: true}, nil
	}
	if i < len(all) {
		return &List[Block]{Results: all[i:]}, nil
	}
	return &List[Block]{}, nil
}

func (p *pagedTransport) RetrieveBlock(_ context.Context, blockID string) (*Block, error) {
	return &Block{ID: blockID}, nil
}

func (p *pagedTransport) RetrieveDatabase(_ context.Context, _ string) (*Database, error) {
	return p.db, nil
}

func TestRecorderThenOffline(t *testing.T) {
	ctx := context.Background()
	snap := OpenSnapshot(t.TempDir())
	live := &pagedTransport{
		children: map[string][]Block{
			"root": {{ID: "a", Type: "paragraph"}, {ID: "b", Type: "toggle", HasChildren: true}},
			"b":    {{ID: "c", Type: "paragraph"}},
		},
		pages: []Page{{ID: "p1"}, {ID: "p2"}},
		db:    &Database{ID: "db-with-dashes", Title: []RichText{{PlainText: "Blog"}}},
	}
	rec := NewRecorder(live, snap)

	got, err := AllBlockChildren(ctx, rec, "root")
	require.NoError(t, err)
	require.Len(t, got, 2)
	_, err = AllBlockChildren(ctx, rec, "b")
	require.NoError(t, err)
	_, err = AllPages(ctx, rec, "db", DatabaseQuery{})
	require.NoError(t, err)
	_, err = AllPages(ctx, rec, "db", DatabaseQuery{})
	require.NoError(t, err)
	_, err = rec.RetrieveDatabase(ctx, "db")
	require.NoError(t, err)

	off := NewOffline(snap)
	children, err := AllBlockChildren(ctx, off, "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, []string{children[0].ID, children[1].ID})

	pages, err := AllPages(ctx, off, "db", DatabaseQuery{})
	require.NoError(t, err)
	assert.Len(t, pages, 2, "repeated queries must not duplicate pages")

	db, err := off.RetrieveDatabase(ctx, "db")
	require.NoError(t, err)
	assert.Equal(t, "Blog", PlainText(db.Title))

	b, err := off.RetrieveBlock(ctx, "b")
	require.NoError(t, err)
	assert.True(t, b.HasChildren)

	_, err = off.ListBlockChildren(ctx, "missing", "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	assert.True(t, errors.IsPermanent(err))
}

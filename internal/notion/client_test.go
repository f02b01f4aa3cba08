package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionblog/internal/config"
	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/retry"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.NotionConfig{
		Token:    "secret-token",
		APIURL:   srv.URL + "/v1",
		PageSize: 50,
	}, WithPolicy(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)))
}

func TestListBlockChildrenRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/blocks/abc/children", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultVersion, r.Header.Get("Notion-Version"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))
		assert.Equal(t, "cur1", r.URL.Query().Get("start_cursor"))

		_, _ = w.Write([]byte(`{
			"object": "list",
			"results": [
				{"object":"block","id":"b1","type":"paragraph","has_children":false,
				 "paragraph":{"rich_text":[{"type":"text","plain_text":"hi","text":{"content":"hi","link":null},
				 "annotations":{"bold":true,"color":"default"}}],"color":"default"}}
			],
			"next_cursor": "cur2",
			"has_more": true
		}`))
	})

	list, err := client.ListBlockChildren(context.Background(), "abc", "cur1")
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "cur2", list.Cursor())

	b := list.Results[0]
	assert.Equal(t, "paragraph", b.Type)
	require.NotNil(t, b.Paragraph)
	require.Len(t, b.Paragraph.RichText, 1)
	assert.True(t, b.Paragraph.RichText[0].Annotations.Bold)
	assert.Equal(t, "hi", b.Paragraph.RichText[0].Text.Content)
}

func TestQueryDatabaseBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/databases/db1/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var q DatabaseQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "c", q.StartCursor)
		assert.Equal(t, 50, q.PageSize)
		require.NotNil(t, q.Filter)
		assert.Equal(t, "Published", q.Filter.Property)
		require.Len(t, q.Sorts, 1)
		assert.Equal(t, Descending, q.Sorts[0].Direction)

		_, _ = w.Write([]byte(`{"object":"list","results":[{"object":"page","id":"p1"}],"next_cursor":null,"has_more":false}`))
	})

	q := DatabaseQuery{
		Filter: &Filter{Property: "Published", Checkbox: &CheckboxCondition{Equals: true}},
		Sorts:  []Sort{{Property: "Date", Direction: Descending}},
	}
	list, err := client.QueryDatabase(context.Background(), "db1", q, "c")
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "p1", list.Results[0].ID)
	assert.Empty(t, list.Cursor())
}

func TestServerErrorsAreRetried(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"object":"block","id":"b1","type":"divider"}`))
	})

	b, err := client.RetrieveBlock(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, int32(3), hits.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.RetrieveBlock(context.Background(), "b1")
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
	assert.True(t, errors.HasCategory(err, errors.CategoryNotion))
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestClientErrorsAbortImmediately(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		category errors.ErrorCategory
	}{
		{"bad request", http.StatusBadRequest, errors.CategoryValidation},
		{"unauthorized", http.StatusUnauthorized, errors.CategoryAuth},
		{"forbidden", http.StatusForbidden, errors.CategoryAuth},
		{"not found", http.StatusNotFound, errors.CategoryNotFound},
		{"rate limited", http.StatusTooManyRequests, errors.CategoryRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"object":"error","status":400,"code":"x","message":"nope"}`))
			})

			_, err := client.RetrieveBlock(context.Background(), "missing")
			require.Error(t, err)
			assert.Equal(t, int32(1), hits.Load())
			assert.True(t, errors.IsPermanent(err))
			assert.Equal(t, tt.category, errors.GetCategory(err))
			assert.Contains(t, err.Error(), "nope")

			ce, ok := errors.AsClassified(err)
			require.True(t, ok)
			id, _ := ce.Context().GetString("block_id")
			assert.Equal(t, "missing", id)
		})
	}
}

func TestRetrieveDatabase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/databases/db1", r.URL.Path)
		_, _ = w.Write([]byte(`{"object":"database","id":"db1",
			"title":[{"type":"text","plain_text":"My ","text":{"content":"My "}},{"type":"text","plain_text":"Blog","text":{"content":"Blog"}}],
			"description":[],"icon":{"type":"emoji","emoji":"📝"}}`))
	})

	db, err := client.RetrieveDatabase(context.Background(), "db1")
	require.NoError(t, err)
	assert.Equal(t, "My Blog", PlainText(db.Title))
	require.NotNil(t, db.Icon)
	assert.Equal(t, "📝", db.Icon.Emoji)
}

package site

import (
	"testing"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMarshalFrontMatterSortsKeys(t *testing.T) {
	out, err := marshalFrontMatter(map[string]any{
		"title": "Hello",
		"rank":  3,
		"draft": false,
		"tags":  []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "draft: false\nrank: 3\ntags:\n  - a\n  - b\ntitle: Hello\n", string(out))
}

func TestFingerprintIgnoresLastmod(t *testing.T) {
	a, err := fingerprint(map[string]any{"title": "x", "lastmod": "2024-01-01"}, "body\n")
	require.NoError(t, err)
	b, err := fingerprint(map[string]any{"title": "x", "lastmod": "2025-06-01", mdfp.FingerprintField: "old"}, "body\n")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := fingerprint(map[string]any{"title": "x"}, "changed\n")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestHugoFrontMatterRoundTrip(t *testing.T) {
	p := RenderedPost{Markdown: "Hi\n", FeaturedImageURL: "/notion/id/f.png"}
	p.Title, p.Slug, p.Date, p.PageID = "T", "t", "2024-01-01", "page-1"
	fields := PostFrontMatter(p)

	data, err := document(fields, p.Markdown)
	require.NoError(t, err)

	var parsed map[string]any
	raw := string(data)
	require.True(t, len(raw) > 8)
	end := len(raw) - len("---\nHi\n")
	require.NoError(t, yaml.Unmarshal([]byte(raw[4:end]), &parsed))
	assert.Equal(t, "T", parsed["title"])
	assert.Equal(t, "page-1", parsed["notion_id"])
	assert.Equal(t, []any{"/notion/id/f.png"}, parsed["images"])
}

package notion

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cursor(s string) *string { return &s }

func TestPaginateFollowsCursor(t *testing.T) {
	pages := map[string]*List[int]{
		"":   {Results: []int{1, 2}, NextCursor: cursor("a"), HasMore: true},
		"a":  {Results: []int{3}, NextCursor: cursor("b"), HasMore: true},
		"b":  {Results: []int{4, 5}, NextCursor: nil, HasMore: false},
		"zz": {Results: []int{99}},
	}
	var seen []string
	got, err := Paginate(context.Background(), func(_ context.Context, c string) (*List[int], error) {
		seen = append(seen, c)
		return pages[c], nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
	assert.Equal(t, []string{"", "a", "b"}, seen)
}

func TestPaginateStopsWhenHasMoreFalse(t *testing.T) {
	calls := 0
	got, err := Paginate(context.Background(), func(_ context.Context, _ string) (*List[int], error) {
		calls++
		return &List[int]{Results: []int{1}, NextCursor: cursor("ignored"), HasMore: false}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
	assert.Equal(t, 1, calls)
}

func TestPaginatePropagatesError(t *testing.T) {
	_, err := Paginate(context.Background(), func(_ context.Context, c string) (*List[int], error) {
		if c == "" {
			return &List[int]{Results: []int{1}, NextCursor: cursor("x"), HasMore: true}, nil
		}
		return nil, fmt.Errorf("boom")
	})
	require.EqualError(t, err, "boom")
}

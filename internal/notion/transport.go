package notion

import "context"

// Transport is the read-only surface of the content API used by the build.
// Every method of Client satisfies it; tests substitute in-memory fakes.
type Transport interface {
	QueryDatabase(ctx context.Context, databaseID string, q DatabaseQuery, cursor string) (*List[Page], error)
	ListBlockChildren(ctx context.Context, blockID, cursor string) (*List[Block], error)
	RetrieveBlock(ctx context.Context, blockID string) (*Block, error)
	RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error)
}

// Paginate calls fetch with successive cursors, accumulating results until the
// API reports no more pages.
func Paginate[T any](ctx context.Context, fetch func(ctx context.Context, cursor string) (*List[T], error)) ([]T, error) {
	var all []T
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)

		next := page.Cursor()
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

// AllBlockChildren lists every child of blockID across all pages.
func AllBlockChildren(ctx context.Context, t Transport, blockID string) ([]Block, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) (*List[Block], error) {
		return t.ListBlockChildren(ctx, blockID, cursor)
	})
}

// AllPages runs q against databaseID and returns every matching page.
func AllPages(ctx context.Context, t Transport, databaseID string, q DatabaseQuery) ([]Page, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) (*List[Page], error) {
		return t.QueryDatabase(ctx, databaseID, q, cursor)
	})
}

var (
	_ Transport = (*Client)(nil)
	_ Transport = (*Offline)(nil)
	_ Transport = (*Recorder)(nil)
)

// Package assembler builds complete block trees by recursively listing the
// children of container blocks.
package assembler

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/notionblog/internal/blocks"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/notion"
	"git.home.luguber.info/inful/notionblog/internal/observability"
)

// Assembler resolves the children of blocks through a Transport, preferring a
// snapshot entry for an id when one exists.
type Assembler struct {
	transport notion.Transport
	snapshot  *notion.SnapshotDir
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithSnapshot makes the assembler read child lists from snap before calling the API.
func WithSnapshot(snap *notion.SnapshotDir) Option {
	return func(a *Assembler) { a.snapshot = snap }
}

// New returns an Assembler over t.
func New(t notion.Transport, opts ...Option) *Assembler {
	a := &Assembler{transport: t}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Children returns the fully assembled children of blockID in document order.
// Recursion follows the document nesting without a depth limit.
func (a *Assembler) Children(ctx context.Context, blockID string) ([]blocks.Block, error) {
	raws, err := a.list(ctx, blockID)
	if err != nil {
		return nil, err
	}
	out := make([]blocks.Block, 0, len(raws))
	for _, raw := range raws {
		b, err := a.expand(ctx, blocks.Normalize(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Block retrieves and assembles a single block.
func (a *Assembler) Block(ctx context.Context, blockID string) (blocks.Block, error) {
	raw, err := a.transport.RetrieveBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}
	return a.expand(ctx, blocks.Normalize(*raw))
}

func (a *Assembler) list(ctx context.Context, blockID string) ([]notion.Block, error) {
	children, ok, err := a.snapshot.Load(blockID)
	if err != nil {
		return nil, err
	}
	if ok {
		return children, nil
	}
	return notion.AllBlockChildren(ctx, a.transport, blockID)
}

func (a *Assembler) expand(ctx context.Context, b blocks.Block) (blocks.Block, error) {
	switch v := b.(type) {
	case blocks.Table:
		return a.table(ctx, v)
	case blocks.ColumnList:
		return a.columns(ctx, v)
	case blocks.SyncedBlock:
		return a.synced(ctx, v)
	}
	if !b.Kind().ExpandsWhenFlagged() || !b.HasChildren() {
		return b, nil
	}
	children, err := a.Children(ctx, b.ID())
	if err != nil {
		return nil, err
	}
	return blocks.Attach(b, children), nil
}

func (a *Assembler) table(ctx context.Context, t blocks.Table) (blocks.Block, error) {
	raws, err := a.list(ctx, t.ID())
	if err != nil {
		return nil, err
	}
	rows := make([]blocks.TableRow, 0, len(raws))
	for _, raw := range raws {
		if row, ok := blocks.Normalize(raw).(blocks.TableRow); ok {
			rows = append(rows, row)
		}
	}
	return t.WithRows(rows), nil
}

func (a *Assembler) columns(ctx context.Context, cl blocks.ColumnList) (blocks.Block, error) {
	raws, err := a.list(ctx, cl.ID())
	if err != nil {
		return nil, err
	}
	cols := make([]blocks.Column, 0, len(raws))
	for _, raw := range raws {
		col, ok := blocks.Normalize(raw).(blocks.Column)
		if !ok {
			continue
		}
		children, err := a.Children(ctx, col.ID())
		if err != nil {
			return nil, err
		}
		cols = append(cols, blocks.Attach(col, children).(blocks.Column))
	}
	return cl.WithColumns(cols), nil
}

// synced assembles the content a synced block mirrors. A reference that cannot be
// resolved yields an empty block and a warning.
func (a *Assembler) synced(ctx context.Context, s blocks.SyncedBlock) (blocks.Block, error) {
	source := s.ID()
	if s.SyncedFrom != "" {
		resolved, err := a.transport.RetrieveBlock(ctx, s.SyncedFrom)
		if err != nil {
			observability.WarnContext(ctx, "Synced block source unavailable, rendering empty",
				logfields.BlockID(s.ID()),
				slog.String("synced_from", s.SyncedFrom),
				logfields.Error(err))
			return blocks.Attach(s, nil), nil
		}
		source = resolved.ID
	}
	children, err := a.Children(ctx, source)
	if err != nil {
		return nil, err
	}
	return blocks.Attach(s, children), nil
}

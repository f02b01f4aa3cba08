package notion

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

// Offline serves every Transport call from a SnapshotDir.
type Offline struct {
	snap *SnapshotDir
}

// NewOffline returns a Transport reading only from snap.
func NewOffline(snap *SnapshotDir) *Offline {
	return &Offline{snap: snap}
}

func (o *Offline) notInSnapshot(key, id string) error {
	return errors.NotFoundError("not present in snapshot").
		WithContext(key, id).
		WithContext("snapshot", o.snap.Root()).
		Permanent().
		Build()
}

// QueryDatabase returns every stored page of databaseID in one page. The query is
// not evaluated; the stored pages are the results recorded when the snapshot was taken.
func (o *Offline) QueryDatabase(_ context.Context, databaseID string, _ DatabaseQuery, _ string) (*List[Page], error) {
	pages, ok, err := o.snap.LoadPages(databaseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, o.notInSnapshot("database_id", databaseID)
	}
	return &List[Page]{Object: "list", Results: pages}, nil
}

func (o *Offline) ListBlockChildren(_ context.Context, blockID, _ string) (*List[Block], error) {
	children, ok, err := o.snap.Load(blockID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, o.notInSnapshot("block_id", blockID)
	}
	return &List[Block]{Object: "list", Results: children}, nil
}

// RetrieveBlock returns a bare envelope for any block whose children are stored.
func (o *Offline) RetrieveBlock(_ context.Context, blockID string) (*Block, error) {
	children, ok, err := o.snap.Load(blockID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, o.notInSnapshot("block_id", blockID)
	}
	return &Block{Object: "block", ID: blockID, HasChildren: len(children) > 0}, nil
}

func (o *Offline) RetrieveDatabase(_ context.Context, databaseID string) (*Database, error) {
	db, ok, err := o.snap.LoadDatabase(databaseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, o.notInSnapshot("database_id", databaseID)
	}
	return db, nil
}

// Recorder wraps a Transport and writes every completed listing to a SnapshotDir.
// Child lists are saved once their last page arrives; query results from all
// queries against a database are merged in arrival order, de-duplicated by id.
type Recorder struct {
	inner Transport
	snap  *SnapshotDir

	mu       sync.Mutex
	children map[string][]Block
	pages    map[string][]Page
	seen     map[string]map[string]bool
}

// NewRecorder returns a recording decorator around inner.
func NewRecorder(inner Transport, snap *SnapshotDir) *Recorder {
	return &Recorder{
		inner:    inner,
		snap:     snap,
		children: make(map[string][]Block),
		pages:    make(map[string][]Page),
		seen:     make(map[string]map[string]bool),
	}
}

func (r *Recorder) QueryDatabase(ctx context.Context, databaseID string, q DatabaseQuery, cursor string) (*List[Page], error) {
	list, err := r.inner.QueryDatabase(ctx, databaseID, q, cursor)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	seen := r.seen[databaseID]
	if seen == nil {
		seen = make(map[string]bool)
		r.seen[databaseID] = seen
	}
	for _, p := range list.Results {
		if !seen[p.ID] {
			seen[p.ID] = true
			r.pages[databaseID] = append(r.pages[databaseID], p)
		}
	}
	if list.Cursor() == "" {
		if err := r.snap.SavePages(databaseID, r.pages[databaseID]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *Recorder) ListBlockChildren(ctx context.Context, blockID, cursor string) (*List[Block], error) {
	list, err := r.inner.ListBlockChildren(ctx, blockID, cursor)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cursor == "" {
		r.children[blockID] = nil
	}
	r.children[blockID] = append(r.children[blockID], list.Results...)
	if list.Cursor() == "" {
		all := r.children[blockID]
		delete(r.children, blockID)
		if err := r.snap.Save(blockID, all); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *Recorder) RetrieveBlock(ctx context.Context, blockID string) (*Block, error) {
	return r.inner.RetrieveBlock(ctx, blockID)
}

func (r *Recorder) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	db, err := r.inner.RetrieveDatabase(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if err := r.snap.SaveDatabase(databaseID, db); err != nil {
		return nil, err
	}
	return db, nil
}

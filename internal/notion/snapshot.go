package notion

import (
	"encoding/json"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

// SnapshotDir is a directory of pre-fetched API results: one <blockID>.json file
// per block holding its child list, plus database metadata and query results
// under the _databases and _pages subdirectories.
type SnapshotDir struct {
	root string
}

// OpenSnapshot returns a SnapshotDir rooted at dir. An empty dir yields nil, which
// behaves as an empty snapshot.
func OpenSnapshot(dir string) *SnapshotDir {
	if dir == "" {
		return nil
	}
	return &SnapshotDir{root: dir}
}

// Root returns the snapshot directory.
func (s *SnapshotDir) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

func (s *SnapshotDir) path(blockID string) string {
	return filepath.Join(s.root, filepath.Base(blockID)+".json")
}

func (s *SnapshotDir) databasePath(databaseID string) string {
	return filepath.Join(s.root, "_databases", filepath.Base(databaseID)+".json")
}

func (s *SnapshotDir) pagesPath(databaseID string) string {
	return filepath.Join(s.root, "_pages", filepath.Base(databaseID)+".json")
}

// Load returns the stored children of blockID. ok is false when no snapshot
// exists for the id.
func (s *SnapshotDir) Load(blockID string) (children []Block, ok bool, err error) {
	if s == nil {
		return nil, false, nil
	}
	ok, err = readJSON(s.path(blockID), &children)
	if err != nil {
		return nil, false, withID(err, "block_id", blockID)
	}
	return children, ok, nil
}

// Save writes the children of blockID, replacing any previous snapshot.
func (s *SnapshotDir) Save(blockID string, children []Block) error {
	if children == nil {
		children = []Block{}
	}
	return s.write(s.path(blockID), children)
}

// LoadDatabase returns stored database metadata.
func (s *SnapshotDir) LoadDatabase(databaseID string) (*Database, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	var db Database
	ok, err := readJSON(s.databasePath(databaseID), &db)
	if err != nil || !ok {
		return nil, false, err
	}
	return &db, true, nil
}

// SaveDatabase stores database metadata under the id it was requested with.
func (s *SnapshotDir) SaveDatabase(databaseID string, db *Database) error {
	return s.write(s.databasePath(databaseID), db)
}

// LoadPages returns the stored query results of databaseID.
func (s *SnapshotDir) LoadPages(databaseID string) (pages []Page, ok bool, err error) {
	if s == nil {
		return nil, false, nil
	}
	ok, err = readJSON(s.pagesPath(databaseID), &pages)
	return pages, ok, err
}

// SavePages stores query results of databaseID.
func (s *SnapshotDir) SavePages(databaseID string, pages []Page) error {
	if pages == nil {
		pages = []Page{}
	}
	return s.write(s.pagesPath(databaseID), pages)
}

func readJSON(p string, v any) (bool, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to read snapshot").
			WithContext("path", p).
			Build()
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.WrapError(err, errors.CategoryValidation, "malformed snapshot").
			WithContext("path", p).
			Build()
	}
	return true, nil
}

// write replaces p atomically.
func (s *SnapshotDir) write(p string, v any) error {
	if s == nil {
		return errors.ConfigError("no snapshot directory configured").Build()
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create snapshot directory").
			WithContext("path", dir).
			Build()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.InternalError("failed to encode snapshot").WithCause(err).Build()
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write snapshot").
			WithContext("path", tmp).
			Build()
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to finalize snapshot").
			WithContext("path", p).
			Build()
	}
	return nil
}

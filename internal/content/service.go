// Package content is the per-build content service. It memoizes post lists per
// language and the database metadata for the life of the process, collapsing
// concurrent fetches of the same key into one.
package content

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/notionblog/internal/assembler"
	"git.home.luguber.info/inful/notionblog/internal/blocks"
	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/lock"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/notion"
	"git.home.luguber.info/inful/notionblog/internal/observability"
	"git.home.luguber.info/inful/notionblog/internal/posts"
)

const databaseKey = "database"

// Options configures a Service.
type Options struct {
	DatabaseID   string
	PostsPerPage int
	Snapshot     *notion.SnapshotDir
	Locks        *lock.Set
	Recorder     metrics.Recorder
	// Now supplies the date used to exclude future posts. Defaults to time.Now.
	Now func() time.Time
}

// Service owns the content cache. Construct one per build and share it.
type Service struct {
	transport    notion.Transport
	assembler    *assembler.Assembler
	databaseID   string
	postsPerPage int
	postsLock    *lock.Domain
	dbLock       *lock.Domain
	recorder     metrics.Recorder
	now          func() time.Time

	mu       sync.RWMutex
	posts    map[string][]posts.Post
	database *posts.Database
}

// NewService returns a Service reading through t.
func NewService(t notion.Transport, opts Options) *Service {
	locks := opts.Locks
	if locks == nil {
		locks = lock.NewSet(0, 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	perPage := opts.PostsPerPage
	if perPage <= 0 {
		perPage = 10
	}
	return &Service{
		transport:    t,
		assembler:    assembler.New(t, assembler.WithSnapshot(opts.Snapshot)),
		databaseID:   opts.DatabaseID,
		postsPerPage: perPage,
		postsLock:    locks.Domain(lock.DomainPosts),
		dbLock:       locks.Domain(lock.DomainDatabase),
		recorder:     metrics.OrNoop(opts.Recorder),
		now:          now,
		posts:        make(map[string][]posts.Post),
	}
}

// PostsPerPage returns the page size used by the paginated accessors.
func (s *Service) PostsPerPage() int { return s.postsPerPage }

func postsKey(lang string) string { return "posts:" + lang }

// AllPosts returns every valid post of lang, meta records included, newest first.
// The first call fetches; every later or concurrent call observes the same slice,
// which callers must not modify.
func (s *Service) AllPosts(ctx context.Context, lang string) ([]posts.Post, error) {
	key := postsKey(lang)
	if cached, ok := s.cachedPosts(key); ok {
		s.recorder.IncCacheResult(lock.DomainPosts, true)
		return cached, nil
	}
	s.recorder.IncCacheResult(lock.DomainPosts, false)

	return lock.Run(ctx, s.postsLock, key, func(ctx context.Context) ([]posts.Post, error) {
		if cached, ok := s.cachedPosts(key); ok {
			return cached, nil
		}
		start := time.Now()
		pages, err := notion.AllPages(ctx, s.transport, s.databaseID, posts.Query(lang, s.now()))
		if err != nil {
			return nil, err
		}
		all := posts.FromPages(pages, lang)

		s.mu.Lock()
		s.posts[key] = all
		s.mu.Unlock()

		observability.DebugContext(ctx, "Fetched posts",
			logfields.CacheKey(key),
			logfields.Lang(lang),
			logfields.DurationMS(float64(time.Since(start).Milliseconds())))
		return all, nil
	})
}

func (s *Service) cachedPosts(key string) ([]posts.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[key]
	return p, ok
}

// Database returns the site metadata, fetched once. A meta record overrides the
// title and description.
func (s *Service) Database(ctx context.Context) (posts.Database, error) {
	if db, ok := s.cachedDatabase(); ok {
		s.recorder.IncCacheResult(lock.DomainDatabase, true)
		return db, nil
	}
	s.recorder.IncCacheResult(lock.DomainDatabase, false)

	return lock.Run(ctx, s.dbLock, databaseKey, func(ctx context.Context) (posts.Database, error) {
		if db, ok := s.cachedDatabase(); ok {
			return db, nil
		}
		raw, err := s.transport.RetrieveDatabase(ctx, s.databaseID)
		if err != nil {
			return posts.Database{}, err
		}
		metaPages, err := notion.AllPages(ctx, s.transport, s.databaseID, posts.MetaQuery())
		if err != nil {
			return posts.Database{}, err
		}
		meta, _ := posts.Meta(posts.FromPages(metaPages, ""))
		db := posts.DatabaseFrom(raw, meta)

		s.mu.Lock()
		s.database = &db
		s.mu.Unlock()
		return db, nil
	})
}

func (s *Service) cachedDatabase() (posts.Database, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.database == nil {
		return posts.Database{}, false
	}
	return *s.database, true
}

// Posts returns the newest n visible posts (all when n <= 0).
func (s *Service) Posts(ctx context.Context, lang string, n int) ([]posts.Post, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return nil, err
	}
	return posts.Latest(all, n), nil
}

// RankedPosts returns up to n posts with a positive rank, highest first.
func (s *Service) RankedPosts(ctx context.Context, lang string, n int) ([]posts.Post, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return nil, err
	}
	return posts.Ranked(all, n), nil
}

// PostBySlug finds a post or returns a not_found error naming the slug.
func (s *Service) PostBySlug(ctx context.Context, lang, slug string) (posts.Post, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return posts.Post{}, err
	}
	p, err := posts.BySlug(all, slug)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			ce.Annotate("lang", lang)
		}
		return posts.Post{}, err
	}
	return p, nil
}

func (s *Service) PostsByTag(ctx context.Context, lang, tag string, n int) ([]posts.Post, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return nil, err
	}
	return posts.ByTag(all, tag, n), nil
}

// PostsByPage returns the 1-based page of visible posts.
func (s *Service) PostsByPage(ctx context.Context, lang string, page int) ([]posts.Post, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return nil, err
	}
	return posts.Page(all, page, s.postsPerPage), nil
}

func (s *Service) PostsByTagAndPage(ctx context.Context, lang, tag string, page int) ([]posts.Post, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return nil, err
	}
	return posts.TagPage(all, tag, page, s.postsPerPage), nil
}

func (s *Service) NumberOfPages(ctx context.Context, lang string) (int, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return 0, err
	}
	return posts.NumberOfPages(all, s.postsPerPage), nil
}

func (s *Service) NumberOfPagesByTag(ctx context.Context, lang, tag string) (int, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return 0, err
	}
	return posts.NumberOfPagesByTag(all, tag, s.postsPerPage), nil
}

func (s *Service) AllTags(ctx context.Context, lang string) ([]posts.Tag, error) {
	all, err := s.AllPosts(ctx, lang)
	if err != nil {
		return nil, err
	}
	return posts.AllTags(all), nil
}

// Block retrieves one block with its children assembled. Used to refresh
// expired hosted file URLs.
func (s *Service) Block(ctx context.Context, blockID string) (blocks.Block, error) {
	return s.assembler.Block(ctx, blockID)
}

// Blocks assembles the content tree of a post. Trees are not cached; each post
// owns its tree.
func (s *Service) Blocks(ctx context.Context, postID string) ([]blocks.Block, error) {
	return s.assembler.Children(ctx, postID)
}

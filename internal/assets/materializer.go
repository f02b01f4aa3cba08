package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/observability"
)

// maxAssetBytes bounds a single download.
const maxAssetBytes = 64 << 20

// Materializer stores remote files under <root>/<dir>/<segment>/<name>, where
// segment is the directory component of the remote path that identifies it
// (hosted files keep a per-file id there) or a hash of the URL when the path
// has none. Each remote URL is fetched at most once per Materializer.
type Materializer struct {
	root     string
	dir      string
	client   *http.Client
	recorder metrics.Recorder

	group singleflight.Group
	mu    sync.RWMutex
	local map[string]string
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithHTTPClient overrides the download client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Materializer) { m.client = c }
}

// WithRecorder records download outcomes.
func WithRecorder(r metrics.Recorder) Option {
	return func(m *Materializer) { m.recorder = metrics.OrNoop(r) }
}

// New returns a Materializer writing below root/dir.
func New(root, dir string, opts ...Option) *Materializer {
	m := &Materializer{
		root:     root,
		dir:      strings.Trim(filepath.ToSlash(dir), "/"),
		client:   &http.Client{Timeout: 60 * time.Second},
		recorder: metrics.NoopRecorder{},
		local:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize downloads remote and returns its site-relative URL ("/notion/...").
func (m *Materializer) Materialize(ctx context.Context, remote string) (string, error) {
	key := cacheKey(remote)
	if u, ok := m.lookup(key); ok {
		return u, nil
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		if u, ok := m.lookup(key); ok {
			return u, nil
		}
		rel, err := Path(remote)
		if err != nil {
			return "", err
		}
		rel = path.Join(m.dir, rel)
		dest := filepath.Join(m.root, filepath.FromSlash(rel))
		if _, statErr := os.Stat(dest); statErr != nil {
			if err := m.download(ctx, remote, dest); err != nil {
				return "", err
			}
		}
		u := "/" + rel
		m.mu.Lock()
		m.local[key] = u
		m.mu.Unlock()
		return u, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Fetch is Materialize for content rendering: failures are logged and counted,
// and the remote URL is returned so the page still links to the original.
func (m *Materializer) Fetch(ctx context.Context, remote string) string {
	if remote == "" {
		return ""
	}
	u, err := m.Materialize(ctx, remote)
	m.recorder.IncAssetResult(err == nil)
	if err != nil {
		observability.WarnContext(ctx, "Asset download failed; linking remote file",
			logfields.URL(redact(remote)), logfields.Error(err))
		return remote
	}
	return u
}

// URL returns the local URL of an already materialized remote, or remote itself.
func (m *Materializer) URL(remote string) string {
	if u, ok := m.lookup(cacheKey(remote)); ok {
		return u
	}
	return remote
}

func (m *Materializer) lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.local[key]
	return u, ok
}

func (m *Materializer) download(ctx context.Context, remote, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return errors.ValidationError("invalid asset URL").WithCause(err).Build()
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return errors.NetworkError("asset request failed").WithCause(err).
			WithContext("url", redact(remote)).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NetworkError("asset request returned non-success status").
			WithContext("url", redact(remote)).
			WithContext("status", resp.StatusCode).
			Build()
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return errors.NetworkError("failed to read asset body").WithCause(err).Build()
	}
	if len(data) > maxAssetBytes {
		return errors.ValidationError("asset exceeds size limit").
			WithContext("url", redact(remote)).
			WithContext("limit", maxAssetBytes).
			Build()
	}
	if isJPEG(dest) {
		data = normalizeJPEG(data)
	}
	return writeAtomic(dest, data)
}

// normalizeJPEG applies the EXIF orientation and re-encodes, which also drops
// the remaining metadata. Undecodable data is stored as downloaded.
func normalizeJPEG(data []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		slog.Debug("JPEG decode failed; storing original bytes", logfields.Error(err))
		return data
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return data
	}
	return buf.Bytes()
}

func writeAtomic(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create asset directory").
			WithContext("path", filepath.Dir(dest)).
			Build()
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".asset-*")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create temp file").Build()
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		return errors.FileSystemError("failed to write asset").
			WithCause(firstErr(werr, cerr)).
			WithContext("path", dest).
			Build()
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to move asset into place").
			WithContext("path", dest).
			Build()
	}
	return nil
}

// Path returns the slash-separated location of remote relative to the asset dir.
func Path(remote string) (string, error) {
	u, err := url.Parse(remote)
	if err != nil || u.Host == "" {
		return "", errors.ValidationError("invalid asset URL").
			WithContext("url", redact(remote)).
			Build()
	}
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return "", errors.ValidationError("asset URL has no file name").
			WithContext("url", redact(remote)).
			Build()
	}
	name := sanitize(unescape(segments[len(segments)-1]))
	segment := ""
	if len(segments) >= 2 {
		segment = sanitize(unescape(segments[len(segments)-2]))
	}
	if segment == "" {
		segment = fmt.Sprintf("%016x", xxhash.Sum64String(cacheKey(remote)))
	}
	if name == "" {
		name = "file"
	}
	return segment + "/" + name, nil
}

// cacheKey drops the query, which carries the short-lived signature of hosted files.
func cacheKey(remote string) string {
	if i := strings.IndexAny(remote, "?#"); i >= 0 {
		return remote[:i]
	}
	return remote
}

func redact(remote string) string { return cacheKey(remote) }

func unescape(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}

// sanitize keeps a single safe path element.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r < 0x20:
			return '_'
		}
		return r
	}, s)
	s = strings.TrimLeft(s, ".")
	return strings.TrimSpace(s)
}

func isJPEG(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyBlockID    = "block_id"
	KeyPageID     = "page_id"
	KeySlug       = "post_slug"
	KeyLang       = "lang"
	KeyCacheKey   = "cache_key"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyAttempt    = "attempt"
	KeyStatus     = "status"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func BlockID(id string) slog.Attr     { return slog.String(KeyBlockID, id) }
func PageID(id string) slog.Attr      { return slog.String(KeyPageID, id) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Lang(l string) slog.Attr         { return slog.String(KeyLang, l) }
func CacheKey(k string) slog.Attr     { return slog.String(KeyCacheKey, k) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

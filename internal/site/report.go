package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
)

// BuildOutcome is the final state of a build.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	OutcomeWarning BuildOutcome = "warning"
	OutcomeFailed  BuildOutcome = "failed"
)

// BuildReport summarizes one build. It is safe for concurrent use by the
// language builds until Finish is called.
type BuildReport struct {
	SchemaVersion    int                      `json:"schema_version"`
	BuildID          string                   `json:"build_id"`
	Format           string                   `json:"format"`
	Languages        []string                 `json:"languages"`
	Start            time.Time                `json:"start"`
	End              time.Time                `json:"end"`
	Posts            int                      `json:"posts"`
	Pages            int                      `json:"pages"`
	AssetsDownloaded int                      `json:"assets_downloaded"`
	AssetsFailed     int                      `json:"assets_failed"`
	Warnings         []string                 `json:"warnings"`
	Errors           []string                 `json:"errors"`
	StageDurations   map[string]time.Duration `json:"stage_durations"`
	Outcome          BuildOutcome             `json:"outcome"`

	mu sync.Mutex
}

func newBuildReport(buildID, format string, langs []string) *BuildReport {
	return &BuildReport{
		SchemaVersion:  1,
		BuildID:        buildID,
		Format:         format,
		Languages:      slices.Clone(langs),
		Start:          time.Now(),
		Warnings:       []string{},
		Errors:         []string{},
		StageDurations: make(map[string]time.Duration),
	}
}

func stageKey(lang string, stage StageName) string {
	if lang == "" {
		return string(stage)
	}
	return lang + "/" + string(stage)
}

func (r *BuildReport) recordStage(lang string, stage StageName, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StageDurations[stageKey(lang, stage)] = d
}

func (r *BuildReport) addPosts(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Posts += n
}

func (r *BuildReport) addPages(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pages += n
}

func (r *BuildReport) addAsset(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.AssetsDownloaded++
		return
	}
	r.AssetsFailed++
}

func (r *BuildReport) addWarning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, msg)
}

func (r *BuildReport) addError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err.Error())
}

// Finish stamps the end time and derives the outcome.
func (r *BuildReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.End = time.Now()
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0 || r.AssetsFailed > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// MetricsOutcome maps the outcome onto the metrics label set.
func (r *BuildReport) MetricsOutcome() metrics.BuildOutcomeLabel {
	switch r.Outcome {
	case OutcomeFailed:
		return metrics.BuildOutcomeFailed
	case OutcomeWarning:
		return metrics.BuildOutcomeWarning
	default:
		return metrics.BuildOutcomeSuccess
	}
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("build=%s langs=%d posts=%d pages=%d assets=%d/%d warnings=%d errors=%d duration=%s outcome=%s",
		r.BuildID, len(r.Languages), r.Posts, r.Pages, r.AssetsDownloaded, r.AssetsDownloaded+r.AssetsFailed,
		len(r.Warnings), len(r.Errors), r.End.Sub(r.Start).Truncate(time.Millisecond), r.Outcome)
}

// Persist writes build-report.json and build-report.txt into root atomically.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create report directory").
			WithContext("path", root).
			Build()
	}
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal build report").Build()
	}
	if err := writeFileAtomic(filepath.Join(root, "build-report.json"), jb); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(root, "build-report.txt"), []byte(r.Summary()+"\n"))
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write file").
			WithContext("path", tmp).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to move file into place").
			WithContext("path", path).
			Build()
	}
	return nil
}

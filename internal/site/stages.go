package site

import (
	"context"
	"time"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
	"git.home.luguber.info/inful/notionblog/internal/logfields"
	"git.home.luguber.info/inful/notionblog/internal/metrics"
	"git.home.luguber.info/inful/notionblog/internal/observability"
)

// StageName identifies a build stage.
type StageName string

const (
	StageFetch  StageName = "fetch"
	StageAssets StageName = "assets"
	StageRender StageName = "render"
	StageWrite  StageName = "write"
)

// Stage executes one step of a language build.
type Stage func(ctx context.Context, b *langBuild) error

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the first error.
func runStages(ctx context.Context, b *langBuild, stages []StageDef, report *BuildReport, recorder metrics.Recorder) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			recorder.IncStageResult(string(st.Name), metrics.ResultFatal)
			return errors.WrapError(err, errors.CategoryRuntime, "build canceled").
				WithContext("stage", string(st.Name)).
				WithContext("lang", b.lang).
				Build()
		}
		stageCtx := observability.WithStage(ctx, string(st.Name))
		t0 := time.Now()
		err := st.Fn(stageCtx, b)
		dur := time.Since(t0)

		report.recordStage(b.lang, st.Name, dur)
		recorder.ObserveStageDuration(string(st.Name), dur)
		if err != nil {
			recorder.IncStageResult(string(st.Name), metrics.ResultFatal)
			observability.ErrorContext(stageCtx, "Stage failed", logfields.Error(err))
			return err
		}
		recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
		observability.DebugContext(stageCtx, "Stage complete", logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("fetch", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("fetch", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.ObserveAPIRequest("blocks.children", 20*time.Millisecond, 200)
	pr.IncAPIRetry("blocks.children")
	pr.IncAPIRetry("blocks.children")
	pr.IncAPIRetryExhausted("databases.query")
	pr.IncCacheResult("posts", true)
	pr.IncCacheResult("posts", false)
	pr.IncAssetResult(false)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.retries.WithLabelValues("blocks.children")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.cacheResults.WithLabelValues("posts", "hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.assetResults.WithLabelValues("failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.apiRequests.WithLabelValues("blocks.children", "200")), 0)
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome(BuildOutcomeWarning)

	path := filepath.Join(t.TempDir(), "notionblog.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `notionblog_build_outcomes_total{outcome="warning"} 1`))
}

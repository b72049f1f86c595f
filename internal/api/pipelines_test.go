package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youpredict/you-predict-core/internal/blobstore"
	"github.com/youpredict/you-predict-core/internal/warehouse"
)

func TestPipelineExpireMonitoring(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wh.MergeResults = []int64{3}

	rec := env.do(http.MethodPost, "/pipelines/expire-monitoring", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"expired":3`)

	merges := env.wh.MergesMatching("monitoring_window_expired")
	require.Len(t, merges, 1)

	// Every run leaves an audit row.
	runs := env.wh.Appended["pipeline_run_log"]
	require.Len(t, runs, 1)
	assert.Equal(t, "expire-monitoring", runs[0]["pipeline_name"])
	assert.Equal(t, "ok", runs[0]["status"])
}

func TestPipelineRenewSubscriptions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wh.QueryResults = [][]warehouse.Row{{
		{"channel_id": "UCchannel001"},
		{"channel_id": "UCchannel002"},
	}}

	rec := env.do(http.MethodPost, "/pipelines/renew-subscriptions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"UCchannel001", "UCchannel002"}, env.hub.subscribed)
	assert.Contains(t, rec.Body.String(), `"renewed":2`)
}

func TestPipelineRenewSubscriptionsAllFail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wh.QueryResults = [][]warehouse.Row{{{"channel_id": "UCchannel001"}}}
	env.hub.failIDs = map[string]bool{"UCchannel001": true}

	rec := env.do(http.MethodPost, "/pipelines/renew-subscriptions", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	runs := env.wh.Appended["pipeline_run_log"]
	require.Len(t, runs, 1)
	assert.Equal(t, "error", runs[0]["status"])
}

func TestPipelineComputeFeatures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wh.MergeResults = []int64{1, 2, 3, 4, 5}

	rec := env.do(http.MethodPost, "/pipelines/compute-features", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rows_written":15`)
	assert.Len(t, env.wh.Merges, 5)
}

func TestPipelineChannelRefresh(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wh.QueryResults = [][]warehouse.Row{{{"channel_id": "UCchannel001"}}}
	env.api.channels = rawItems(`{
		"id": "UCchannel001",
		"snippet": {"title": "Tech Reviews", "publishedAt": "2020-03-01T00:00:00Z"},
		"statistics": {"viewCount": "9000000", "subscriberCount": "120000", "videoCount": "410"}
	}`)
	env.wh.MergeResults = []int64{1, 1}

	rec := env.do(http.MethodPost, "/pipelines/daily-channel-refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"channels":1`)

	_, ok := env.blobs.Get(blobstore.ChannelMetadataPath("UCchannel001", testNow))
	assert.True(t, ok)
	assert.Len(t, env.wh.MergesMatching("dim_channel"), 1)
	assert.Len(t, env.wh.MergesMatching("fact_channel_snapshot"), 1)
}

func TestPipelineChannelRefreshNoChannels(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/pipelines/daily-channel-refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"channels":0`)
	assert.Empty(t, env.wh.Merges)
}

func TestPipelineVideoRefresh(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wh.QueryResults = [][]warehouse.Row{{{"video_id": "vid12345678"}}}
	env.api.videos = rawItems(`{
		"id": "vid12345678",
		"snippet": {
			"channelId": "UCchannel001",
			"title": "Benchmarks",
			"publishedAt": "2026-01-09T12:00:00Z",
			"categoryId": "28"
		},
		"contentDetails": {"duration": "PT12M30S", "definition": "hd", "caption": "true"}
	}`)
	env.wh.MergeResults = []int64{1}

	rec := env.do(http.MethodPost, "/pipelines/daily-video-refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"videos":1`)

	_, ok := env.blobs.Get(blobstore.VideoMetadataPath("vid12345678", testNow))
	assert.True(t, ok)
	assert.Len(t, env.wh.MergesMatching("dim_video"), 1)
}

package transform

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

const videoItem = `{
  "id": "vid1",
  "snippet": {
    "channelId": "UCabc",
    "title": "My New Video [4K]",
    "description": "Don't miss it!\nTimestamps:\n0:00 Intro",
    "publishedAt": "2025-01-15T10:00:00Z",
    "categoryId": "28",
    "liveBroadcastContent": "none",
    "tags": ["tech", "review"],
    "thumbnails": {"maxres": {"url": "https://img/max.jpg"}}
  },
  "contentDetails": {
    "duration": "PT1H2M30S",
    "definition": "hd",
    "caption": "true",
    "licensedContent": true
  },
  "status": {"madeForKids": false},
  "statistics": {"viewCount": "100"},
  "paidProductPlacementDetails": {"hasPaidProductPlacement": false}
}`

func TestVideoTransform(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{1}
	tr := NewVideoTransformer(fake, zap.NewNop())

	results, err := tr.Transform(context.Background(), []json.RawMessage{json.RawMessage(videoItem)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "dim_video", results[0].Table)

	require.Len(t, fake.Merges, 1)
	sql := fake.Merges[0].SQL

	// PT1H2M30S parses to 3750 seconds.
	assert.Contains(t, sql, "3750 AS duration_seconds")
	assert.Contains(t, sql, `Don\'t miss it!\nTimestamps:\n0:00 Intro`)
	assert.Contains(t, sql, "['tech', 'review']")
	assert.Contains(t, sql, "ON T.video_id = S.video_id")

	// first_seen_at is set on insert only; updates must not rewrite it.
	updateClause := sql[strings.Index(sql, "WHEN MATCHED"):strings.Index(sql, "WHEN NOT MATCHED")]
	assert.NotContains(t, updateClause, "first_seen_at")
	insertClause := sql[strings.Index(sql, "WHEN NOT MATCHED"):]
	assert.Contains(t, insertClause, "first_seen_at")
}

func TestVideoTransformLivestreamFlag(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{1}
	tr := NewVideoTransformer(fake, zap.NewNop())

	live := `{"id":"vid2","snippet":{"channelId":"UCabc","title":"Live now","liveBroadcastContent":"live"}}`
	_, err := tr.Transform(context.Background(), []json.RawMessage{json.RawMessage(live)})
	require.NoError(t, err)

	assert.Contains(t, fake.Merges[0].SQL, "TRUE AS is_livestream")
}

func TestVideoTransformBatch(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{2}
	tr := NewVideoTransformer(fake, zap.NewNop())

	raw := []json.RawMessage{
		json.RawMessage(videoItem),
		json.RawMessage(`{"id":"vid2","snippet":{"channelId":"UCabc","title":"Other"}}`),
	}
	results, err := tr.Transform(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, int64(2), results[0].RowsWritten)

	// One statement for the whole batch.
	require.Len(t, fake.Merges, 1)
	assert.Equal(t, 1, strings.Count(fake.Merges[0].SQL, "UNION ALL"))
}

package transform

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

const channelItem = `{
  "id": "UCabc",
  "snippet": {
    "title": "Tech Channel",
    "description": "Don't miss it!\nTimestamps:\n0:00 Intro",
    "customUrl": "@tech",
    "country": "US",
    "publishedAt": "2020-06-01T00:00:00Z",
    "thumbnails": {"high": {"url": "https://img/high.jpg"}}
  },
  "statistics": {
    "viewCount": "82949853",
    "subscriberCount": "250000",
    "videoCount": "431",
    "hiddenSubscriberCount": false
  },
  "brandingSettings": {"channel": {"keywords": "tech reviews"}},
  "contentDetails": {"relatedPlaylists": {"uploads": "UUabc"}},
  "topicDetails": {"topicCategories": ["https://en.wikipedia.org/wiki/Technology"]},
  "status": {"madeForKids": false}
}`

func TestChannelTransform(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.QueryResults = [][]warehouse.Row{
		{{"subscriber_count": int64(240000), "view_count": int64(80000000), "video_count": int64(430)}},
	}
	fake.MergeResults = []int64{1, 1}
	tr := NewChannelTransformer(fake, zap.NewNop())

	results, err := tr.Transform(context.Background(), []json.RawMessage{json.RawMessage(channelItem)})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "dim_channel", results[0].Table)
	assert.Equal(t, "fact_channel_snapshot", results[1].Table)

	require.Len(t, fake.Merges, 2)

	dimSQL := fake.Merges[0].SQL
	assert.Contains(t, dimSQL, "ON T.channel_id = S.channel_id")
	assert.Contains(t, dimSQL, `Don\'t miss it!\nTimestamps:\n0:00 Intro`)
	assert.Contains(t, dimSQL, "https://img/high.jpg")

	snapSQL := fake.Merges[1].SQL
	// Deltas against the prior snapshot: views 2949853, subs 10000, videos 1.
	assert.Contains(t, snapSQL, "2949853")
	assert.Contains(t, snapSQL, "10000")
	assert.Contains(t, snapSQL, "ON T.snapshot_date = S.snapshot_date AND T.channel_id = S.channel_id")
}

func TestChannelTransformNoPrior(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{1, 1}
	tr := NewChannelTransformer(fake, zap.NewNop())

	_, err := tr.Transform(context.Background(), []json.RawMessage{json.RawMessage(channelItem)})
	require.NoError(t, err)

	require.Len(t, fake.Merges, 2)
	assert.Contains(t, fake.Merges[1].SQL, "CAST(NULL AS INT64)")
}

func TestChannelTransformSkipsBadItems(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{1, 1}
	tr := NewChannelTransformer(fake, zap.NewNop())

	raw := []json.RawMessage{
		json.RawMessage(`{"id": 12}`),
		json.RawMessage(channelItem),
	}
	results, err := tr.Transform(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestChannelTransformEmpty(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	tr := NewChannelTransformer(fake, zap.NewNop())

	results, err := tr.Transform(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, fake.Merges)
}

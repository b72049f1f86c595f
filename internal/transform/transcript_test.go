package transform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

func TestTranscriptTransform(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{1}
	tr := NewTranscriptTransformer(fake, zap.NewNop())

	fetched := time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC)
	res, err := tr.Transform(context.Background(),
		"welcome back to the channel. today we review the new phone.",
		"vid1", "en", "gs://raw/video_transcripts/vid1/vid1_en.txt", fetched)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsWritten)

	require.Len(t, fake.Merges, 1)
	params := map[string]any{}
	for _, p := range fake.Merges[0].Params {
		params[p.Name] = p.Value
	}
	assert.Equal(t, "vid1", params["video_id"])
	assert.Equal(t, int64(11), params["word_count"])
	assert.Equal(t, "gs://raw/video_transcripts/vid1/vid1_en.txt", params["transcript_uri"])
	grade, ok := params["readability_grade"].(float64)
	require.True(t, ok)
	assert.Greater(t, grade, 0.0)
}

func TestTranscriptTransformEmpty(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	tr := NewTranscriptTransformer(fake, zap.NewNop())

	res, err := tr.Transform(context.Background(), "   \n", "vid1", "en", "", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsWritten)
	assert.Empty(t, fake.Merges)
}

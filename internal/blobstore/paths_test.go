package blobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsDeterministic(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t,
		"channel_metadata/UCabc/UCabc_2025-01-15T10-30-00Z.json",
		ChannelMetadataPath("UCabc", ts))
	assert.Equal(t,
		"video_metadata/vid1/vid1_2025-01-15T10-30-00Z.json",
		VideoMetadataPath("vid1", ts))
	assert.Equal(t,
		"video_snapshot_stats/2025-01-15/vid1_2025-01-15T10-30-00Z.json",
		VideoSnapshotPath("vid1", ts))
	assert.Equal(t,
		"video_comments/vid1/vid1_2025-01-15T10-30-00Z_p1.json",
		VideoCommentsPath("vid1", ts, 1))
	assert.Equal(t,
		"video_transcripts/vid1/vid1_en.txt",
		VideoTranscriptPath("vid1", "en"))

	// Same inputs, same path.
	assert.Equal(t, VideoSnapshotPath("vid1", ts), VideoSnapshotPath("vid1", ts))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	uri, err := m.PutJSON(context.Background(), "a/b.json", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, "mem://a/b.json", uri)

	data, ok := m.Get("a/b.json")
	require.True(t, ok)
	assert.JSONEq(t, `{"k":"v"}`, string(data))

	_, err = m.PutText(context.Background(), "t.txt", "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

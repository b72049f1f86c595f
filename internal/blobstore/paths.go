package blobstore

import (
	"fmt"
	"time"
)

// Object paths are deterministic functions of entity id and capture time,
// mirroring the layout the downstream replay tooling expects.

func stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15-04-05Z")
}

// ChannelMetadataPath locates a raw channel payload.
func ChannelMetadataPath(channelID string, ts time.Time) string {
	return fmt.Sprintf("channel_metadata/%s/%s_%s.json", channelID, channelID, stamp(ts))
}

// VideoMetadataPath locates a raw video payload.
func VideoMetadataPath(videoID string, ts time.Time) string {
	return fmt.Sprintf("video_metadata/%s/%s_%s.json", videoID, videoID, stamp(ts))
}

// VideoSnapshotPath locates a raw statistics snapshot, grouped by capture
// date.
func VideoSnapshotPath(videoID string, ts time.Time) string {
	return fmt.Sprintf("video_snapshot_stats/%s/%s_%s.json", ts.UTC().Format("2006-01-02"), videoID, stamp(ts))
}

// VideoCommentsPath locates one page of raw comment threads.
func VideoCommentsPath(videoID string, ts time.Time, page int) string {
	return fmt.Sprintf("video_comments/%s/%s_%s_p%d.json", videoID, videoID, stamp(ts), page)
}

// VideoTranscriptPath locates a transcript text blob.
func VideoTranscriptPath(videoID, language string) string {
	return fmt.Sprintf("video_transcripts/%s/%s_%s.txt", videoID, videoID, language)
}

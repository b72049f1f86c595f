package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/metrics"
	"github.com/youpredict/you-predict-core/internal/schedule"
	"github.com/youpredict/you-predict-core/internal/timeutil"
	"github.com/youpredict/you-predict-core/internal/warehouse"
)

// SnapshotTransformer writes one fact_video_snapshot row per task. The
// row is keyed by (video_id, snapshot_type), so a redelivered task lands
// on the same row. The nominal interval labels the row; the actual
// capture lag is recorded separately.
type SnapshotTransformer struct {
	wh     warehouse.Service
	logger *zap.Logger
}

// NewSnapshotTransformer builds a SnapshotTransformer.
func NewSnapshotTransformer(wh warehouse.Service, logger *zap.Logger) *SnapshotTransformer {
	return &SnapshotTransformer{wh: wh, logger: logger}
}

func (t *SnapshotTransformer) latestSnapshot(ctx context.Context, videoID string) (warehouse.Row, error) {
	rows, err := t.wh.RunQuery(ctx,
		"SELECT view_count, like_count, comment_count "+
			"FROM `{project}.{dataset}.fact_video_snapshot` "+
			"WHERE video_id = @video_id "+
			"ORDER BY actual_captured_at DESC LIMIT 1",
		warehouse.Param{Name: "video_id", Value: videoID},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

const videoSnapshotMerge = `
MERGE ` + "`{project}.{dataset}.fact_video_snapshot`" + ` T
USING (
  SELECT DATE(@captured_at) AS snapshot_date, @snapshot_type AS snapshot_type,
         @video_id AS video_id, @channel_id AS channel_id
) S
ON T.video_id = S.video_id AND T.snapshot_type = S.snapshot_type
WHEN MATCHED THEN UPDATE SET
  snapshot_date = S.snapshot_date,
  actual_captured_at = @captured_at,
  actual_hours_since_publish = @actual_hours,
  view_count = %[1]s,
  like_count = %[2]s,
  comment_count = %[3]s,
  views_delta = %[4]s,
  likes_delta = %[5]s,
  comments_delta = %[6]s
WHEN NOT MATCHED THEN INSERT (
  snapshot_date, snapshot_type, video_id, channel_id, actual_captured_at,
  actual_hours_since_publish, view_count, like_count, comment_count,
  views_delta, likes_delta, comments_delta
) VALUES (
  S.snapshot_date, S.snapshot_type, S.video_id, S.channel_id, @captured_at,
  @actual_hours, %[1]s, %[2]s, %[3]s, %[4]s, %[5]s, %[6]s
)`

// Transform upserts a statistics snapshot captured intervalHours after
// publish. raw is one statistics-only video item.
func (t *SnapshotTransformer) Transform(ctx context.Context, raw json.RawMessage, videoID, channelID string, intervalHours int, publishedAt, capturedAt time.Time) (Result, error) {
	var item VideoItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return Result{}, fmt.Errorf("transform: decode snapshot item: %w", err)
	}
	var views, likes, comments *int64
	if item.Statistics != nil {
		views = SafeInt(item.Statistics.ViewCount)
		likes = SafeInt(item.Statistics.LikeCount)
		comments = SafeInt(item.Statistics.CommentCount)
	}

	prev, err := t.latestSnapshot(ctx, videoID)
	if err != nil {
		return Result{}, fmt.Errorf("transform: prior video snapshot for %s: %w", videoID, err)
	}
	var viewsDelta, likesDelta, commentsDelta *int64
	if prev != nil {
		viewsDelta = delta(views, prev.Int64("view_count"))
		likesDelta = delta(likes, prev.Int64("like_count"))
		commentsDelta = delta(comments, prev.Int64("comment_count"))
	}

	actualHours := math.Round(timeutil.HoursSince(publishedAt, capturedAt)*100) / 100

	sql := fmt.Sprintf(videoSnapshotMerge,
		warehouse.SQLInt(views),
		warehouse.SQLInt(likes),
		warehouse.SQLInt(comments),
		warehouse.SQLInt(viewsDelta),
		warehouse.SQLInt(likesDelta),
		warehouse.SQLInt(commentsDelta),
	)
	affected, err := t.wh.RunMerge(ctx, sql,
		warehouse.Param{Name: "captured_at", Value: capturedAt.UTC()},
		warehouse.Param{Name: "snapshot_type", Value: schedule.SnapshotLabel(intervalHours)},
		warehouse.Param{Name: "video_id", Value: videoID},
		warehouse.Param{Name: "channel_id", Value: channelID},
		warehouse.Param{Name: "actual_hours", Value: actualHours},
	)
	if err != nil {
		return Result{}, fmt.Errorf("transform: fact_video_snapshot merge for %s: %w", videoID, err)
	}
	metrics.ObserveTransformRows("fact_video_snapshot", affected)
	t.logger.Debug("snapshot upserted",
		zap.String("video_id", videoID),
		zap.String("snapshot_type", schedule.SnapshotLabel(intervalHours)),
		zap.Float64("actual_hours", actualHours))
	return Result{Table: "fact_video_snapshot", RowsWritten: affected, WriteMethod: "merge"}, nil
}

// Package discovery owns the video monitoring lifecycle: registering
// newly published videos, answering dedup checks, and aging videos out of
// their monitoring window.
package discovery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

// InactiveReason is the closed set of reasons a video stops being
// monitored.
type InactiveReason string

const (
	ReasonWindowExpired InactiveReason = "monitoring_window_expired"
	ReasonVideoDeleted  InactiveReason = "video_deleted"
	ReasonVideoPrivated InactiveReason = "video_privated"
	ReasonManualStop    InactiveReason = "manual_stop"
)

// Valid reports whether r is one of the known reasons.
func (r InactiveReason) Valid() bool {
	switch r {
	case ReasonWindowExpired, ReasonVideoDeleted, ReasonVideoPrivated, ReasonManualStop:
		return true
	}
	return false
}

// Engine runs the lifecycle operations against the warehouse.
type Engine struct {
	wh          warehouse.Service
	windowHours int
	logger      *zap.Logger
}

// NewEngine builds an Engine monitoring each video for windowHours after
// publish.
func NewEngine(wh warehouse.Service, windowHours int, logger *zap.Logger) *Engine {
	return &Engine{wh: wh, windowHours: windowHours, logger: logger}
}

const registerSQL = `
MERGE ` + "`{project}.{dataset}.video_monitoring`" + ` T
USING (
  SELECT @video_id AS video_id,
         @channel_id AS channel_id,
         @published_at AS published_at,
         @discovered_at AS discovered_at,
         @monitoring_until AS monitoring_until
) S
ON T.video_id = S.video_id
WHEN NOT MATCHED THEN
  INSERT (video_id, channel_id, published_at, discovered_at, monitoring_until, is_active)
  VALUES (S.video_id, S.channel_id, S.published_at, S.discovered_at, S.monitoring_until, TRUE)`

// RegisterVideo inserts the video into the monitoring table unless it is
// already there. It returns true when this call created the row; under
// concurrent duplicate deliveries exactly one caller sees true.
func (e *Engine) RegisterVideo(ctx context.Context, videoID, channelID string, publishedAt time.Time) (bool, error) {
	now := time.Now().UTC()
	affected, err := e.wh.RunMerge(ctx, registerSQL,
		warehouse.Param{Name: "video_id", Value: videoID},
		warehouse.Param{Name: "channel_id", Value: channelID},
		warehouse.Param{Name: "published_at", Value: publishedAt.UTC()},
		warehouse.Param{Name: "discovered_at", Value: now},
		warehouse.Param{Name: "monitoring_until", Value: publishedAt.UTC().Add(time.Duration(e.windowHours) * time.Hour)},
	)
	if err != nil {
		return false, fmt.Errorf("discovery: register %s: %w", videoID, err)
	}
	isNew := affected > 0
	e.logger.Info("video registration",
		zap.String("video_id", videoID),
		zap.String("channel_id", channelID),
		zap.Bool("is_new", isNew))
	return isNew, nil
}

// IsVideoRegistered reports whether the video is already in the
// monitoring table, active or not.
func (e *Engine) IsVideoRegistered(ctx context.Context, videoID string) (bool, error) {
	rows, err := e.wh.RunQuery(ctx,
		"SELECT 1 AS x FROM `{project}.{dataset}.video_monitoring` WHERE video_id = @video_id LIMIT 1",
		warehouse.Param{Name: "video_id", Value: videoID},
	)
	if err != nil {
		return false, fmt.Errorf("discovery: check %s: %w", videoID, err)
	}
	return len(rows) > 0, nil
}

// GetActiveVideoIDs returns the distinct ids of videos still inside their
// monitoring window.
func (e *Engine) GetActiveVideoIDs(ctx context.Context) ([]string, error) {
	rows, err := e.wh.RunQuery(ctx,
		"SELECT DISTINCT video_id FROM `{project}.{dataset}.video_monitoring` WHERE is_active = TRUE")
	if err != nil {
		return nil, fmt.Errorf("discovery: active videos: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if id := r.String("video_id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GetTrackedChannelIDs returns the ids of channels the service watches.
func (e *Engine) GetTrackedChannelIDs(ctx context.Context) ([]string, error) {
	rows, err := e.wh.RunQuery(ctx,
		"SELECT channel_id FROM `{project}.{dataset}.tracked_channels` WHERE is_active = TRUE")
	if err != nil {
		return nil, fmt.Errorf("discovery: tracked channels: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if id := r.String("channel_id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

const expireSQL = `
UPDATE ` + "`{project}.{dataset}.video_monitoring`" + `
SET is_active = FALSE,
    deactivated_at = CURRENT_TIMESTAMP(),
    inactive_reason = 'monitoring_window_expired'
WHERE is_active = TRUE
  AND monitoring_until < CURRENT_TIMESTAMP()`

// ExpireMonitoring deactivates every video whose monitoring window has
// passed and returns how many were expired. Only currently active rows
// match, so running it twice is harmless.
func (e *Engine) ExpireMonitoring(ctx context.Context) (int64, error) {
	affected, err := e.wh.RunMerge(ctx, expireSQL)
	if err != nil {
		return 0, fmt.Errorf("discovery: expire: %w", err)
	}
	if affected > 0 {
		e.logger.Info("monitoring expired", zap.Int64("videos", affected))
	}
	return affected, nil
}

const deactivateSQL = `
UPDATE ` + "`{project}.{dataset}.video_monitoring`" + `
SET is_active = FALSE,
    deactivated_at = CURRENT_TIMESTAMP(),
    inactive_reason = @reason
WHERE video_id = @video_id
  AND is_active = TRUE`

// DeactivateVideo stops monitoring a single video for the given reason.
// Already-inactive videos are left untouched.
func (e *Engine) DeactivateVideo(ctx context.Context, videoID string, reason InactiveReason) (int64, error) {
	if !reason.Valid() {
		return 0, fmt.Errorf("discovery: invalid inactive reason %q", reason)
	}
	affected, err := e.wh.RunMerge(ctx, deactivateSQL,
		warehouse.Param{Name: "video_id", Value: videoID},
		warehouse.Param{Name: "reason", Value: string(reason)},
	)
	if err != nil {
		return 0, fmt.Errorf("discovery: deactivate %s: %w", videoID, err)
	}
	e.logger.Info("video deactivated",
		zap.String("video_id", videoID),
		zap.String("reason", string(reason)),
		zap.Int64("rows", affected))
	return affected, nil
}

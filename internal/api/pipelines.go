package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/blobstore"
	"github.com/youpredict/you-predict-core/internal/metrics"
	"github.com/youpredict/you-predict-core/internal/warehouse"
)

// pipelineFunc runs one scheduled pipeline and returns a response body.
type pipelineFunc func(ctx context.Context) (map[string]any, error)

// pipeline wraps a pipelineFunc with run logging and metrics. Failures
// return 500 so the scheduler's retry policy kicks in.
func (s *Server) pipeline(name string, fn pipelineFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		body, err := fn(r.Context())

		status := "ok"
		detail := ""
		if err != nil {
			status = "error"
			detail = err.Error()
		}
		dur := time.Since(start)
		metrics.ObservePipelineRun(name, status, dur)
		s.logRun(r.Context(), name, start, status, detail)

		if err != nil {
			s.logger.Error("pipeline failed", zap.String("pipeline", name), zap.Error(err))
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", name))
			return
		}
		body["pipeline"] = name
		body["duration_ms"] = dur.Milliseconds()
		writeJSON(w, http.StatusOK, body)
	}
}

// logRun appends a row to pipeline_run_log. Run logging is advisory and
// never fails the pipeline.
func (s *Server) logRun(ctx context.Context, name string, start time.Time, status, detail string) {
	row := warehouse.Row{
		"run_id":        uuid.NewString(),
		"pipeline_name": name,
		"started_at":    start,
		"finished_at":   s.now(),
		"status":        status,
		"detail":        detail,
	}
	if err := s.wh.AppendRows(ctx, "pipeline_run_log", []warehouse.Row{row}); err != nil {
		s.logger.Warn("run log append failed", zap.String("pipeline", name), zap.Error(err))
	}
}

// runChannelRefresh re-pulls metadata and statistics for every tracked
// channel and upserts the channel dimension plus a daily snapshot.
func (s *Server) runChannelRefresh(ctx context.Context) (map[string]any, error) {
	ids, err := s.discovery.GetTrackedChannelIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked channels: %w", err)
	}
	if len(ids) == 0 {
		return map[string]any{"channels": 0}, nil
	}

	items, err := s.videoAPI.ListChannels(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch channels: %w", err)
	}

	// Raw writes are per channel and best effort: one bad object must
	// not lose the batch.
	now := s.now()
	for _, item := range items {
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &probe); err != nil || probe.ID == "" {
			continue
		}
		if _, err := s.blobs.PutJSON(ctx, blobstore.ChannelMetadataPath(probe.ID, now), item); err != nil {
			s.logger.Warn("raw channel write failed",
				zap.String("channel_id", probe.ID), zap.Error(err))
		}
	}

	results, err := s.channels.Transform(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("transform channels: %w", err)
	}

	var rows int64
	for _, res := range results {
		rows += res.RowsWritten
	}
	return map[string]any{"channels": len(items), "rows_written": rows}, nil
}

// runVideoRefresh re-pulls full metadata for every actively monitored
// video and upserts the video dimension.
func (s *Server) runVideoRefresh(ctx context.Context) (map[string]any, error) {
	ids, err := s.discovery.GetActiveVideoIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active videos: %w", err)
	}
	if len(ids) == 0 {
		return map[string]any{"videos": 0}, nil
	}

	items, err := s.videoAPI.ListVideos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch videos: %w", err)
	}

	now := s.now()
	for _, item := range items {
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &probe); err != nil || probe.ID == "" {
			continue
		}
		if _, err := s.blobs.PutJSON(ctx, blobstore.VideoMetadataPath(probe.ID, now), item); err != nil {
			s.logger.Warn("raw video write failed",
				zap.String("video_id", probe.ID), zap.Error(err))
		}
	}

	results, err := s.videos.Transform(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("transform videos: %w", err)
	}

	var rows int64
	for _, res := range results {
		rows += res.RowsWritten
	}
	return map[string]any{"videos": len(items), "rows_written": rows}, nil
}

// runExpireMonitoring deactivates videos whose monitoring window has
// closed.
func (s *Server) runExpireMonitoring(ctx context.Context) (map[string]any, error) {
	expired, err := s.discovery.ExpireMonitoring(ctx)
	if err != nil {
		return nil, fmt.Errorf("expire monitoring: %w", err)
	}
	return map[string]any{"expired": expired}, nil
}

// runRenewSubscriptions re-subscribes the push feed for every tracked
// channel. Hub leases lapse after a few days, so this runs daily.
func (s *Server) runRenewSubscriptions(ctx context.Context) (map[string]any, error) {
	ids, err := s.discovery.GetTrackedChannelIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked channels: %w", err)
	}

	renewed, failed := 0, 0
	for _, id := range ids {
		if err := s.hub.Subscribe(ctx, id); err != nil {
			s.logger.Warn("subscription renewal failed",
				zap.String("channel_id", id), zap.Error(err))
			failed++
			continue
		}
		renewed++
	}
	if renewed == 0 && failed > 0 {
		return nil, fmt.Errorf("all %d subscription renewals failed", failed)
	}
	return map[string]any{"renewed": renewed, "failed": failed}, nil
}

// runComputeFeatures recomputes all ML feature tables for today.
func (s *Server) runComputeFeatures(ctx context.Context) (map[string]any, error) {
	rows, err := s.runner.RunAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute features: %w", err)
	}
	return map[string]any{"rows_written": rows}, nil
}

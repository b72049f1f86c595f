// Package fanout plans and enqueues the delayed polling tasks created
// for every newly discovered video.
package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/metrics"
	"github.com/youpredict/you-predict-core/internal/schedule"
	"github.com/youpredict/you-predict-core/internal/taskqueue"
)

// Scheduler builds the task plan for a video and submits it to the
// delayed queue.
type Scheduler struct {
	queue   taskqueue.Queue
	sched   schedule.Fanout
	baseURL string
	logger  *zap.Logger
}

// NewScheduler builds a Scheduler targeting the service at baseURL.
func NewScheduler(queue taskqueue.Queue, sched schedule.Fanout, baseURL string, logger *zap.Logger) *Scheduler {
	return &Scheduler{queue: queue, sched: sched, baseURL: baseURL, logger: logger}
}

type taskPayload struct {
	VideoID       string `json:"video_id"`
	ChannelID     string `json:"channel_id"`
	PublishedAt   string `json:"published_at"`
	IntervalHours int    `json:"interval_hours,omitempty"`
}

func payloadBytes(videoID, channelID string, publishedAt time.Time, intervalHours int) []byte {
	b, _ := json.Marshal(taskPayload{
		VideoID:       videoID,
		ChannelID:     channelID,
		PublishedAt:   publishedAt.UTC().Format(time.RFC3339),
		IntervalHours: intervalHours,
	})
	return b
}

// Plan builds the full task plan for one video. Task ids are pure
// functions of the video id and the schedule, so replanning the same
// video produces byte-identical names.
func (s *Scheduler) Plan(videoID, channelID string, publishedAt time.Time) []taskqueue.Task {
	publishedAt = publishedAt.UTC()
	tasks := make([]taskqueue.Task, 0, s.sched.TaskCount())

	for _, h := range s.sched.SnapshotHours {
		tasks = append(tasks, taskqueue.Task{
			ID:           fmt.Sprintf("%s-snapshot-%dh", videoID, h),
			URL:          fmt.Sprintf("%s/tasks/snapshot/%s?interval=%d", s.baseURL, videoID, h),
			Body:         payloadBytes(videoID, channelID, publishedAt, h),
			ScheduleTime: publishedAt.Add(time.Duration(h) * time.Hour),
		})
	}
	for _, h := range s.sched.CommentHours {
		tasks = append(tasks, taskqueue.Task{
			ID:           fmt.Sprintf("%s-comments-%dh", videoID, h),
			URL:          fmt.Sprintf("%s/tasks/comments/%s", s.baseURL, videoID),
			Body:         payloadBytes(videoID, channelID, publishedAt, h),
			ScheduleTime: publishedAt.Add(time.Duration(h) * time.Hour),
		})
	}
	tasks = append(tasks, taskqueue.Task{
		ID:           videoID + "-transcript",
		URL:          fmt.Sprintf("%s/tasks/transcript/%s", s.baseURL, videoID),
		Body:         payloadBytes(videoID, channelID, publishedAt, 0),
		ScheduleTime: publishedAt.Add(time.Duration(s.sched.TranscriptHour) * time.Hour),
	})
	return tasks
}

// Enqueue submits the plan. A task that already exists counts as ok, so
// replaying a webhook delivery reports full success. Other failures are
// logged and counted but never abort the remaining tasks.
func (s *Scheduler) Enqueue(ctx context.Context, videoID, channelID string, publishedAt time.Time) (ok, failed int) {
	for _, t := range s.Plan(videoID, channelID, publishedAt) {
		err := s.queue.CreateTask(ctx, t)
		switch {
		case err == nil:
			ok++
			metrics.ObserveFanoutTask("created")
		case errors.Is(err, taskqueue.ErrAlreadyExists):
			ok++
			metrics.ObserveFanoutTask("duplicate")
			s.logger.Debug("task already scheduled", zap.String("task_id", t.ID))
		default:
			failed++
			metrics.ObserveFanoutTask("failed")
			s.logger.Error("task scheduling failed",
				zap.String("task_id", t.ID), zap.Error(err))
		}
	}
	s.logger.Info("fanout complete",
		zap.String("video_id", videoID),
		zap.Int("ok", ok),
		zap.Int("failed", failed))
	return ok, failed
}

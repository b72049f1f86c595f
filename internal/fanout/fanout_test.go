package fanout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/schedule"
	"github.com/youpredict/you-predict-core/internal/taskqueue"
)

const baseURL = "https://ingest.example.com"

func newScheduler(q taskqueue.Queue) *Scheduler {
	return NewScheduler(q, schedule.Default(), baseURL, zap.NewNop())
}

func TestPlan(t *testing.T) {
	t.Parallel()

	published := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	s := newScheduler(taskqueue.NewMemory())

	tasks := s.Plan("vid1", "UCabc", published)
	require.Len(t, tasks, 20)

	byID := make(map[string]taskqueue.Task, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}

	snap := byID["vid1-snapshot-24h"]
	assert.Equal(t, baseURL+"/tasks/snapshot/vid1?interval=24", snap.URL)
	assert.Equal(t, published.Add(24*time.Hour), snap.ScheduleTime)
	assert.JSONEq(t,
		`{"video_id":"vid1","channel_id":"UCabc","published_at":"2025-01-15T10:00:00Z","interval_hours":24}`,
		string(snap.Body))

	comments := byID["vid1-comments-72h"]
	assert.Equal(t, baseURL+"/tasks/comments/vid1", comments.URL)
	assert.Equal(t, published.Add(72*time.Hour), comments.ScheduleTime)

	transcript := byID["vid1-transcript"]
	assert.Equal(t, baseURL+"/tasks/transcript/vid1", transcript.URL)
	assert.Equal(t, published.Add(24*time.Hour), transcript.ScheduleTime)
	assert.JSONEq(t,
		`{"video_id":"vid1","channel_id":"UCabc","published_at":"2025-01-15T10:00:00Z"}`,
		string(transcript.Body))
}

func TestPlanDeterministic(t *testing.T) {
	t.Parallel()

	published := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	s := newScheduler(taskqueue.NewMemory())

	a := s.Plan("vid1", "UCabc", published)
	b := s.Plan("vid1", "UCabc", published)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}

func TestEnqueueDuplicateIsFullSuccess(t *testing.T) {
	t.Parallel()

	q := taskqueue.NewMemory()
	s := newScheduler(q)
	published := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	ok, failed := s.Enqueue(context.Background(), "vid1", "UCabc", published)
	assert.Equal(t, 20, ok)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 20, q.Len())

	// Replaying the same video hits name dedup on every task and still
	// reports full success.
	ok, failed = s.Enqueue(context.Background(), "vid1", "UCabc", published)
	assert.Equal(t, 20, ok)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 20, q.Len())
}

func TestEnqueuePartialFailure(t *testing.T) {
	t.Parallel()

	q := taskqueue.NewMemory()
	q.FailIDs = map[string]error{
		"vid1-snapshot-6h": errors.New("unavailable"),
		"vid1-transcript":  fmt.Errorf("wrapped: %w", errors.New("boom")),
	}
	s := newScheduler(q)

	ok, failed := s.Enqueue(context.Background(), "vid1", "UCabc", time.Now().UTC())
	assert.Equal(t, 18, ok)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 18, q.Len())
}

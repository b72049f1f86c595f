package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/blobstore"
	"github.com/youpredict/you-predict-core/internal/timeutil"
	"github.com/youpredict/you-predict-core/internal/ytapi"
)

// taskPayload is the body the fan-out scheduler attached at enqueue
// time. published_at rides along so hours-since-publish does not need a
// warehouse read.
type taskPayload struct {
	VideoID       string `json:"video_id"`
	ChannelID     string `json:"channel_id"`
	PublishedAt   string `json:"published_at"`
	IntervalHours int    `json:"interval_hours,omitempty"`
}

// decodeTask reads the payload and reconciles it with the URL. Returns
// false after writing a response when the task is permanently bad; the
// queue must not redeliver those, so they get a 200.
func (s *Server) decodeTask(w http.ResponseWriter, r *http.Request) (taskPayload, time.Time, bool) {
	videoID := chi.URLParam(r, "video_id")

	var p taskPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.logger.Error("undecodable task payload, dropping",
			zap.String("video_id", videoID), zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
		return taskPayload{}, time.Time{}, false
	}
	if p.VideoID == "" {
		p.VideoID = videoID
	}
	if p.VideoID == "" || p.ChannelID == "" {
		s.logger.Error("task payload missing ids, dropping",
			zap.String("video_id", videoID))
		writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
		return taskPayload{}, time.Time{}, false
	}

	publishedAt, err := timeutil.ParseISO(p.PublishedAt)
	if err != nil {
		s.logger.Error("task payload has bad published_at, dropping",
			zap.String("video_id", p.VideoID), zap.String("published_at", p.PublishedAt))
		writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
		return taskPayload{}, time.Time{}, false
	}
	return p, publishedAt, true
}

// taskSnapshot captures one statistics snapshot for a monitored video.
func (s *Server) taskSnapshot(w http.ResponseWriter, r *http.Request) {
	p, publishedAt, ok := s.decodeTask(w, r)
	if !ok {
		return
	}

	interval := p.IntervalHours
	if v := r.URL.Query().Get("interval"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			interval = n
		}
	}
	if interval <= 0 {
		s.logger.Error("snapshot task without interval, dropping",
			zap.String("video_id", p.VideoID))
		writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
		return
	}

	ctx := r.Context()
	items, err := s.videoAPI.ListVideoStats(ctx, []string{p.VideoID})
	if err != nil {
		s.logger.Error("stats fetch failed", zap.String("video_id", p.VideoID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "stats fetch failed")
		return
	}
	if len(items) == 0 {
		// The video is gone or private. The remaining tasks for it will
		// land here too and no-op the same way.
		s.logger.Warn("video missing from stats response, skipping snapshot",
			zap.String("video_id", p.VideoID), zap.Int("interval_hours", interval))
		writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}

	capturedAt := s.now()
	if _, err := s.blobs.PutJSON(ctx, blobstore.VideoSnapshotPath(p.VideoID, capturedAt), items[0]); err != nil {
		s.logger.Error("raw snapshot write failed", zap.String("video_id", p.VideoID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "raw write failed")
		return
	}

	res, err := s.snapshots.Transform(ctx, items[0], p.VideoID, p.ChannelID, interval, publishedAt, capturedAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "snapshot transform failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"table":        res.Table,
		"rows_written": res.RowsWritten,
	})
}

// taskComments pulls a relevance-ranked comment sample for a video.
func (s *Server) taskComments(w http.ResponseWriter, r *http.Request) {
	p, _, ok := s.decodeTask(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	items, err := s.videoAPI.ListCommentThreads(ctx, p.VideoID, 0)
	if err != nil {
		s.logger.Error("comment fetch failed", zap.String("video_id", p.VideoID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "comment fetch failed")
		return
	}
	if len(items) == 0 {
		// Comments disabled, or none yet.
		writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}

	pulledAt := s.now()
	if _, err := s.blobs.PutJSON(ctx, blobstore.VideoCommentsPath(p.VideoID, pulledAt, 1), items); err != nil {
		s.logger.Error("raw comments write failed", zap.String("video_id", p.VideoID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "raw write failed")
		return
	}

	res, err := s.comments.Transform(ctx, items, p.VideoID, p.ChannelID, pulledAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "comment transform failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"table":        res.Table,
		"rows_written": res.RowsWritten,
	})
}

// taskTranscript fetches the caption track, if one exists.
func (s *Server) taskTranscript(w http.ResponseWriter, r *http.Request) {
	p, _, ok := s.decodeTask(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	lang := s.cfg.YouTube.TranscriptLanguage
	text, err := s.videoAPI.FetchTranscript(ctx, p.VideoID, lang)
	if errors.Is(err, ytapi.ErrTranscriptUnavailable) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "unavailable"})
		return
	}
	if err != nil {
		s.logger.Error("transcript fetch failed", zap.String("video_id", p.VideoID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "transcript fetch failed")
		return
	}

	uri, err := s.blobs.PutText(ctx, blobstore.VideoTranscriptPath(p.VideoID, lang), text)
	if err != nil {
		s.logger.Error("raw transcript write failed", zap.String("video_id", p.VideoID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "raw write failed")
		return
	}

	res, err := s.transcripts.Transform(ctx, text, p.VideoID, lang, uri, s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "transcript transform failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"table":        res.Table,
		"rows_written": res.RowsWritten,
	})
}

package api

import (
	"encoding/xml"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/metrics"
	"github.com/youpredict/you-predict-core/internal/timeutil"
)

// atomFeed mirrors the hub's push notification. Only the first entry is
// used; the hub sends one entry per publish event.
type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	VideoID   string `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID string `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	Published string `xml:"published"`
}

// webhookVerify answers the hub's subscription challenge: echo
// hub.challenge verbatim or refuse.
func (s *Server) webhookVerify(w http.ResponseWriter, r *http.Request) {
	challenge := r.URL.Query().Get("hub.challenge")
	if challenge == "" {
		writeError(w, http.StatusBadRequest, "missing hub.challenge")
		return
	}
	s.logger.Info("subscription verified",
		zap.String("topic", r.URL.Query().Get("hub.topic")),
		zap.String("mode", r.URL.Query().Get("hub.mode")))
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// webhookNotify handles a push notification. It always returns 200: the
// hub drops subscriptions that keep failing, and a redelivered
// notification is handled by the registration merge anyway.
func (s *Server) webhookNotify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		metrics.ObserveWebhook("empty")
		w.WriteHeader(http.StatusOK)
		return
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		s.logger.Warn("unparseable webhook payload", zap.Error(err))
		metrics.ObserveWebhook("unparseable")
		w.WriteHeader(http.StatusOK)
		return
	}
	if len(feed.Entries) == 0 {
		// Deletion pings and empty feeds look like this.
		metrics.ObserveWebhook("no_entry")
		w.WriteHeader(http.StatusOK)
		return
	}

	entry := feed.Entries[0]
	if entry.VideoID == "" || entry.ChannelID == "" {
		metrics.ObserveWebhook("missing_ids")
		w.WriteHeader(http.StatusOK)
		return
	}

	publishedAt := s.now()
	if ts, err := timeutil.ParseISO(entry.Published); err == nil {
		publishedAt = ts
	}

	ctx := r.Context()

	// Cheap duplicate check before the merge. Edits and redeliveries for
	// known videos are the common case.
	known, err := s.discovery.IsVideoRegistered(ctx, entry.VideoID)
	if err != nil {
		s.logger.Error("registration lookup failed",
			zap.String("video_id", entry.VideoID), zap.Error(err))
		metrics.ObserveWebhook("error")
		w.WriteHeader(http.StatusOK)
		return
	}
	if known {
		metrics.ObserveWebhook("duplicate")
		w.WriteHeader(http.StatusOK)
		return
	}

	isNew, err := s.discovery.RegisterVideo(ctx, entry.VideoID, entry.ChannelID, publishedAt)
	if err != nil {
		s.logger.Error("video registration failed",
			zap.String("video_id", entry.VideoID), zap.Error(err))
		metrics.ObserveWebhook("error")
		w.WriteHeader(http.StatusOK)
		return
	}
	if !isNew {
		// Lost the race against a concurrent delivery.
		metrics.ObserveWebhook("duplicate")
		w.WriteHeader(http.StatusOK)
		return
	}

	ok, failed := s.scheduler.Enqueue(ctx, entry.VideoID, entry.ChannelID, publishedAt)
	s.logger.Info("video discovered",
		zap.String("video_id", entry.VideoID),
		zap.String("channel_id", entry.ChannelID),
		zap.Time("published_at", publishedAt),
		zap.Int("tasks_ok", ok),
		zap.Int("tasks_failed", failed))
	metrics.ObserveWebhook("discovered")
	w.WriteHeader(http.StatusOK)
}

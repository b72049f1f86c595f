// Package ytapi wraps the metered video metadata API. Every list call
// costs one quota unit per page; the client counts usage so operators can
// see how close the day's ingest runs to the cap. Items are surfaced as
// raw JSON so the blob layer stores exactly what the API returned.
package ytapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/youpredict/you-predict-core/internal/metrics"
)

const (
	channelParts = "snippet,statistics,brandingSettings,contentDetails,topicDetails,status"
	videoParts   = "snippet,contentDetails,status,topicDetails,statistics,paidProductPlacementDetails"

	// The API caps id lists at 50 per call.
	maxIDsPerCall = 50

	// Comment thread pulls page at most this deep.
	commentPageSize   = 100
	maxCommentPages   = 5
	commentOrder      = "relevance"
	quotaWarnRemained = 1000

	timedtextURL = "https://www.youtube.com/api/timedtext"
)

// ErrTranscriptUnavailable reports that a video has no caption track for
// the requested language. It is an expected condition, not a failure.
var ErrTranscriptUnavailable = errors.New("ytapi: transcript unavailable")

// Client is the metered API client.
type Client struct {
	svc           *youtube.Service
	http          *http.Client
	transcriptURL string
	logger        *zap.Logger

	mu         sync.Mutex
	quotaUsed  int
	quotaLimit int
}

// New builds a Client from an API key.
func New(ctx context.Context, apiKey string, quotaLimit int, logger *zap.Logger) (*Client, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ytapi: build service: %w", err)
	}
	return &Client{
		svc:           svc,
		http:          &http.Client{Timeout: 30 * time.Second},
		transcriptURL: timedtextURL,
		logger:        logger,
		quotaLimit:    quotaLimit,
	}, nil
}

// QuotaUsed returns the units consumed since the client was built.
func (c *Client) QuotaUsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quotaUsed
}

func (c *Client) trackQuota(units int) {
	c.mu.Lock()
	c.quotaUsed += units
	used, limit := c.quotaUsed, c.quotaLimit
	c.mu.Unlock()
	metrics.SetAPIQuotaUsed(used)
	if limit > 0 && limit-used < quotaWarnRemained {
		c.logger.Warn("api quota nearly exhausted",
			zap.Int("used", used), zap.Int("limit", limit))
	}
}

func batches(ids []string) [][]string {
	var out [][]string
	for len(ids) > maxIDsPerCall {
		out = append(out, ids[:maxIDsPerCall])
		ids = ids[maxIDsPerCall:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// ListChannels fetches full channel resources for the given ids.
func (c *Client) ListChannels(ctx context.Context, ids []string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for _, batch := range batches(ids) {
		resp, err := c.svc.Channels.List(strings.Split(channelParts, ",")).
			Id(batch...).MaxResults(maxIDsPerCall).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("ytapi: list channels: %w", err)
		}
		c.trackQuota(1)
		for _, it := range resp.Items {
			raw, err := json.Marshal(it)
			if err != nil {
				return nil, fmt.Errorf("ytapi: encode channel item: %w", err)
			}
			items = append(items, raw)
		}
	}
	return items, nil
}

func (c *Client) listVideos(ctx context.Context, ids []string, parts string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for _, batch := range batches(ids) {
		resp, err := c.svc.Videos.List(strings.Split(parts, ",")).
			Id(batch...).MaxResults(maxIDsPerCall).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("ytapi: list videos: %w", err)
		}
		c.trackQuota(1)
		for _, it := range resp.Items {
			raw, err := json.Marshal(it)
			if err != nil {
				return nil, fmt.Errorf("ytapi: encode video item: %w", err)
			}
			items = append(items, raw)
		}
	}
	return items, nil
}

// ListVideos fetches full video resources for the given ids. Deleted or
// private videos are simply absent from the result.
func (c *Client) ListVideos(ctx context.Context, ids []string) ([]json.RawMessage, error) {
	return c.listVideos(ctx, ids, videoParts)
}

// ListVideoStats fetches statistics-only video resources.
func (c *Client) ListVideoStats(ctx context.Context, ids []string) ([]json.RawMessage, error) {
	return c.listVideos(ctx, ids, "statistics")
}

// ListCommentThreads pulls top comment threads for a video in relevance
// order, paging up to maxPages (capped at the package limit). Replies
// included inline on each thread are part of the payload.
func (c *Client) ListCommentThreads(ctx context.Context, videoID string, maxPages int) ([]json.RawMessage, error) {
	if maxPages <= 0 || maxPages > maxCommentPages {
		maxPages = maxCommentPages
	}
	var items []json.RawMessage
	pageToken := ""
	for page := 0; page < maxPages; page++ {
		call := c.svc.CommentThreads.List([]string{"snippet", "replies"}).
			VideoId(videoID).
			MaxResults(commentPageSize).
			Order(commentOrder).
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("ytapi: list comment threads for %s: %w", videoID, err)
		}
		c.trackQuota(1)
		for _, it := range resp.Items {
			raw, err := json.Marshal(it)
			if err != nil {
				return nil, fmt.Errorf("ytapi: encode comment thread: %w", err)
			}
			items = append(items, raw)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return items, nil
}

// timedtext JSON: a list of events, each carrying utf8 segments.
type timedtextPayload struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// FetchTranscript pulls the caption track through the timedtext endpoint.
// The call consumes no API quota. Videos without captions return
// ErrTranscriptUnavailable.
func (c *Client) FetchTranscript(ctx context.Context, videoID, language string) (string, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", language)
	q.Set("fmt", "json3")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.transcriptURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("ytapi: transcript request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ytapi: transcript fetch for %s: %w", videoID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrTranscriptUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ytapi: transcript fetch for %s: status %d", videoID, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ytapi: transcript read for %s: %w", videoID, err)
	}
	// The endpoint answers 200 with an empty body when no track exists.
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", ErrTranscriptUnavailable
	}
	var payload timedtextPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("ytapi: transcript decode for %s: %w", videoID, err)
	}
	text := assembleTranscript(payload)
	if text == "" {
		return "", ErrTranscriptUnavailable
	}
	return text, nil
}

func assembleTranscript(p timedtextPayload) string {
	var b strings.Builder
	for _, ev := range p.Events {
		for _, seg := range ev.Segs {
			s := strings.TrimSpace(seg.UTF8)
			if s == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s)
		}
	}
	return b.String()
}

package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/metrics"
	"github.com/youpredict/you-predict-core/internal/timeutil"
	"github.com/youpredict/you-predict-core/internal/warehouse"
)

// VideoTransformer upserts video identity into dim_video. first_seen_at
// is written once on insert and never touched again.
type VideoTransformer struct {
	wh     warehouse.Service
	logger *zap.Logger
}

// NewVideoTransformer builds a VideoTransformer.
func NewVideoTransformer(wh warehouse.Service, logger *zap.Logger) *VideoTransformer {
	return &VideoTransformer{wh: wh, logger: logger}
}

func videoDimRow(item VideoItem) string {
	var (
		channelID, title, description *string
		publishedAt                   *time.Time
		categoryID                    *string
		durationSeconds               *int64
		definition                    *string
		hasCaptions                   *bool
		licensedContent               *bool
		madeForKids                   *bool
		hasPaidPlacement              *bool
		isLivestream                  *bool
		thumbnail                     *string
		tags, topics                  []string
	)
	if s := item.Snippet; s != nil {
		channelID = strOrNil(s.ChannelID)
		title = strOrNil(s.Title)
		description = strOrNil(s.Description)
		publishedAt = parseTimestamp(s.PublishedAt)
		categoryID = strOrNil(s.CategoryID)
		live := s.LiveBroadcastContent != "" && s.LiveBroadcastContent != "none"
		isLivestream = &live
		thumbnail = BestThumbnail(s.Thumbnails)
		tags = s.Tags
	}
	if c := item.ContentDetails; c != nil {
		if c.Duration != "" {
			d := timeutil.ParseISODuration(c.Duration)
			durationSeconds = &d
		}
		definition = strOrNil(c.Definition)
		captions := c.Caption == "true"
		hasCaptions = &captions
		licensedContent = c.LicensedContent
	}
	if item.Status != nil {
		madeForKids = item.Status.MadeForKids
	}
	if p := item.PaidProductPlacementDetails; p != nil {
		hasPaidPlacement = p.HasPaidProductPlacement
	}
	if t := item.TopicDetails; t != nil {
		topics = t.TopicCategories
	}

	return fmt.Sprintf(
		"SELECT %s AS video_id, %s AS channel_id, %s AS title, %s AS description, "+
			"%s AS published_at, %s AS category_id, %s AS duration_seconds, %s AS definition, "+
			"%s AS has_captions, %s AS licensed_content, %s AS made_for_kids, "+
			"%s AS has_paid_placement, %s AS is_livestream, %s AS thumbnail_url, "+
			"%s AS tags, %s AS topic_categories",
		warehouse.SQLString(&item.ID),
		warehouse.SQLString(channelID),
		warehouse.SQLString(title),
		warehouse.SQLString(description),
		warehouse.SQLTimestamp(publishedAt),
		warehouse.SQLString(categoryID),
		warehouse.SQLInt(durationSeconds),
		warehouse.SQLString(definition),
		warehouse.SQLBool(hasCaptions),
		warehouse.SQLBool(licensedContent),
		warehouse.SQLBool(madeForKids),
		warehouse.SQLBool(hasPaidPlacement),
		warehouse.SQLBool(isLivestream),
		warehouse.SQLString(thumbnail),
		warehouse.SQLStringArray(tags),
		warehouse.SQLStringArray(topics),
	)
}

const videoDimMergeTemplate = `
MERGE ` + "`{project}.{dataset}.dim_video`" + ` T
USING (
%s
) S
ON T.video_id = S.video_id
WHEN MATCHED THEN UPDATE SET
  channel_id = S.channel_id,
  title = S.title,
  description = S.description,
  published_at = S.published_at,
  category_id = S.category_id,
  duration_seconds = S.duration_seconds,
  definition = S.definition,
  has_captions = S.has_captions,
  licensed_content = S.licensed_content,
  made_for_kids = S.made_for_kids,
  has_paid_placement = S.has_paid_placement,
  is_livestream = S.is_livestream,
  thumbnail_url = S.thumbnail_url,
  tags = S.tags,
  topic_categories = S.topic_categories,
  updated_at = CURRENT_TIMESTAMP()
WHEN NOT MATCHED THEN INSERT (
  video_id, channel_id, title, description, published_at, category_id,
  duration_seconds, definition, has_captions, licensed_content,
  made_for_kids, has_paid_placement, is_livestream, thumbnail_url, tags,
  topic_categories, first_seen_at, updated_at
) VALUES (
  S.video_id, S.channel_id, S.title, S.description, S.published_at,
  S.category_id, S.duration_seconds, S.definition, S.has_captions,
  S.licensed_content, S.made_for_kids, S.has_paid_placement,
  S.is_livestream, S.thumbnail_url, S.tags, S.topic_categories,
  CURRENT_TIMESTAMP(), CURRENT_TIMESTAMP()
)`

// Transform upserts the raw video items into dim_video.
func (t *VideoTransformer) Transform(ctx context.Context, raw []json.RawMessage) ([]Result, error) {
	items := decodeItems[VideoItem](raw, t.logger, "video")
	if len(items) == 0 {
		return nil, nil
	}
	rows := make([]string, len(items))
	for i, item := range items {
		rows[i] = videoDimRow(item)
	}
	sql := fmt.Sprintf(videoDimMergeTemplate, strings.Join(rows, "\nUNION ALL\n"))
	affected, err := t.wh.RunMerge(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("transform: dim_video merge: %w", err)
	}
	metrics.ObserveTransformRows("dim_video", affected)
	return []Result{{Table: "dim_video", RowsWritten: affected, WriteMethod: "merge"}}, nil
}

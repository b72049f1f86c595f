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

// ChannelTransformer upserts channel identity into dim_channel and daily
// counters into fact_channel_snapshot.
type ChannelTransformer struct {
	wh     warehouse.Service
	logger *zap.Logger
}

// NewChannelTransformer builds a ChannelTransformer.
func NewChannelTransformer(wh warehouse.Service, logger *zap.Logger) *ChannelTransformer {
	return &ChannelTransformer{wh: wh, logger: logger}
}

func channelDimRow(item ChannelItem) string {
	var (
		title, description, customURL, country *string
		publishedAt                            *time.Time
		thumbnail                              *string
		subs, videos, views                    *int64
		hiddenSubs, madeForKids                *bool
		keywords, uploads                      *string
		topics                                 []string
	)
	if item.Status != nil {
		madeForKids = item.Status.MadeForKids
	}
	if s := item.Snippet; s != nil {
		title = strOrNil(s.Title)
		description = strOrNil(s.Description)
		customURL = strOrNil(s.CustomURL)
		country = strOrNil(s.Country)
		publishedAt = parseTimestamp(s.PublishedAt)
		thumbnail = BestThumbnail(s.Thumbnails)
	}
	if st := item.Statistics; st != nil {
		subs = SafeInt(st.SubscriberCount)
		videos = SafeInt(st.VideoCount)
		views = SafeInt(st.ViewCount)
		hiddenSubs = st.HiddenSubscriberCount
	}
	if b := item.BrandingSettings; b != nil && b.Channel != nil {
		keywords = strOrNil(b.Channel.Keywords)
	}
	if c := item.ContentDetails; c != nil && c.RelatedPlaylists != nil {
		uploads = strOrNil(c.RelatedPlaylists.Uploads)
	}
	if t := item.TopicDetails; t != nil {
		topics = t.TopicCategories
	}

	return fmt.Sprintf(
		"SELECT %s AS channel_id, %s AS channel_title, %s AS description, %s AS custom_url, "+
			"%s AS country, %s AS published_at, %s AS thumbnail_url, %s AS subscriber_count, "+
			"%s AS video_count, %s AS view_count, %s AS hidden_subscriber_count, %s AS keywords, "+
			"%s AS uploads_playlist_id, %s AS topic_categories, %s AS made_for_kids",
		warehouse.SQLString(&item.ID),
		warehouse.SQLString(title),
		warehouse.SQLString(description),
		warehouse.SQLString(customURL),
		warehouse.SQLString(country),
		warehouse.SQLTimestamp(publishedAt),
		warehouse.SQLString(thumbnail),
		warehouse.SQLInt(subs),
		warehouse.SQLInt(videos),
		warehouse.SQLInt(views),
		warehouse.SQLBool(hiddenSubs),
		warehouse.SQLString(keywords),
		warehouse.SQLString(uploads),
		warehouse.SQLStringArray(topics),
		warehouse.SQLBool(madeForKids),
	)
}

const channelDimMergeTemplate = `
MERGE ` + "`{project}.{dataset}.dim_channel`" + ` T
USING (
%s
) S
ON T.channel_id = S.channel_id
WHEN MATCHED THEN UPDATE SET
  channel_title = S.channel_title,
  description = S.description,
  custom_url = S.custom_url,
  country = S.country,
  published_at = S.published_at,
  thumbnail_url = S.thumbnail_url,
  subscriber_count = S.subscriber_count,
  video_count = S.video_count,
  view_count = S.view_count,
  hidden_subscriber_count = S.hidden_subscriber_count,
  keywords = S.keywords,
  uploads_playlist_id = S.uploads_playlist_id,
  topic_categories = S.topic_categories,
  made_for_kids = S.made_for_kids,
  updated_at = CURRENT_TIMESTAMP()
WHEN NOT MATCHED THEN INSERT (
  channel_id, channel_title, description, custom_url, country, published_at,
  thumbnail_url, subscriber_count, video_count, view_count,
  hidden_subscriber_count, keywords, uploads_playlist_id, topic_categories,
  made_for_kids, updated_at
) VALUES (
  S.channel_id, S.channel_title, S.description, S.custom_url, S.country,
  S.published_at, S.thumbnail_url, S.subscriber_count, S.video_count,
  S.view_count, S.hidden_subscriber_count, S.keywords,
  S.uploads_playlist_id, S.topic_categories, S.made_for_kids,
  CURRENT_TIMESTAMP()
)`

func (t *ChannelTransformer) mergeDim(ctx context.Context, items []ChannelItem) (int64, error) {
	rows := make([]string, len(items))
	for i, item := range items {
		rows[i] = channelDimRow(item)
	}
	sql := fmt.Sprintf(channelDimMergeTemplate, strings.Join(rows, "\nUNION ALL\n"))
	affected, err := t.wh.RunMerge(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("transform: dim_channel merge: %w", err)
	}
	return affected, nil
}

const channelSnapshotMerge = `
MERGE ` + "`{project}.{dataset}.fact_channel_snapshot`" + ` T
USING (
  SELECT DATE(@snapshot_ts) AS snapshot_date, @snapshot_ts AS snapshot_ts,
         @channel_id AS channel_id
) S
ON T.snapshot_date = S.snapshot_date AND T.channel_id = S.channel_id
WHEN MATCHED THEN UPDATE SET
  snapshot_ts = S.snapshot_ts,
  subscriber_count = %[1]s,
  view_count = %[2]s,
  video_count = %[3]s,
  subs_delta = %[4]s,
  views_delta = %[5]s,
  videos_delta = %[6]s
WHEN NOT MATCHED THEN INSERT (
  snapshot_date, snapshot_ts, channel_id, subscriber_count, view_count,
  video_count, subs_delta, views_delta, videos_delta
) VALUES (
  S.snapshot_date, S.snapshot_ts, S.channel_id,
  %[1]s, %[2]s, %[3]s, %[4]s, %[5]s, %[6]s
)`

func (t *ChannelTransformer) latestSnapshot(ctx context.Context, channelID string) (warehouse.Row, error) {
	rows, err := t.wh.RunQuery(ctx,
		"SELECT subscriber_count, view_count, video_count "+
			"FROM `{project}.{dataset}.fact_channel_snapshot` "+
			"WHERE channel_id = @channel_id "+
			"ORDER BY snapshot_ts DESC LIMIT 1",
		warehouse.Param{Name: "channel_id", Value: channelID},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (t *ChannelTransformer) mergeSnapshot(ctx context.Context, item ChannelItem, now time.Time) (int64, error) {
	subs := SafeInt(item.Statistics.SubscriberCount)
	views := SafeInt(item.Statistics.ViewCount)
	videos := SafeInt(item.Statistics.VideoCount)

	prev, err := t.latestSnapshot(ctx, item.ID)
	if err != nil {
		return 0, fmt.Errorf("transform: prior channel snapshot for %s: %w", item.ID, err)
	}
	var subsDelta, viewsDelta, videosDelta *int64
	if prev != nil {
		subsDelta = delta(subs, prev.Int64("subscriber_count"))
		viewsDelta = delta(views, prev.Int64("view_count"))
		videosDelta = delta(videos, prev.Int64("video_count"))
	}

	sql := fmt.Sprintf(channelSnapshotMerge,
		warehouse.SQLInt(subs),
		warehouse.SQLInt(views),
		warehouse.SQLInt(videos),
		warehouse.SQLInt(subsDelta),
		warehouse.SQLInt(viewsDelta),
		warehouse.SQLInt(videosDelta),
	)
	affected, err := t.wh.RunMerge(ctx, sql,
		warehouse.Param{Name: "snapshot_ts", Value: now},
		warehouse.Param{Name: "channel_id", Value: item.ID},
	)
	if err != nil {
		return 0, fmt.Errorf("transform: fact_channel_snapshot merge for %s: %w", item.ID, err)
	}
	return affected, nil
}

// Transform upserts the raw channel items. Items that fail to decode or
// lack statistics are skipped without failing the batch.
func (t *ChannelTransformer) Transform(ctx context.Context, raw []json.RawMessage) ([]Result, error) {
	items := decodeItems[ChannelItem](raw, t.logger, "channel")
	if len(items) == 0 {
		return nil, nil
	}

	dimRows, err := t.mergeDim(ctx, items)
	if err != nil {
		return nil, err
	}
	metrics.ObserveTransformRows("dim_channel", dimRows)

	now := timeutil.UTCNow()
	var snapshotRows int64
	for _, item := range items {
		if item.Statistics == nil {
			t.logger.Warn("channel item without statistics skipped",
				zap.String("channel_id", item.ID))
			continue
		}
		n, err := t.mergeSnapshot(ctx, item, now)
		if err != nil {
			return nil, err
		}
		snapshotRows += n
	}
	metrics.ObserveTransformRows("fact_channel_snapshot", snapshotRows)

	return []Result{
		{Table: "dim_channel", RowsWritten: dimRows, WriteMethod: "merge"},
		{Table: "fact_channel_snapshot", RowsWritten: snapshotRows, WriteMethod: "merge"},
	}, nil
}

package warehouse

import "cloud.google.com/go/bigquery"

// TableDef describes one warehouse table: its columns plus optional
// day partitioning and clustering.
type TableDef struct {
	Schema         bigquery.Schema
	PartitionField string
	ClusterFields  []string
}

func col(name string, typ bigquery.FieldType) *bigquery.FieldSchema {
	return &bigquery.FieldSchema{Name: name, Type: typ}
}

func req(name string, typ bigquery.FieldType) *bigquery.FieldSchema {
	return &bigquery.FieldSchema{Name: name, Type: typ, Required: true}
}

func rep(name string, typ bigquery.FieldType) *bigquery.FieldSchema {
	return &bigquery.FieldSchema{Name: name, Type: typ, Repeated: true}
}

// Registry defines every table the service owns. Facts are partitioned on
// their date column and clustered by entity id so the snapshot and delta
// lookups stay cheap.
var Registry = map[string]TableDef{
	"tracked_channels": {
		Schema: bigquery.Schema{
			req("channel_id", bigquery.StringFieldType),
			col("added_at", bigquery.TimestampFieldType),
			col("is_active", bigquery.BooleanFieldType),
			col("notes", bigquery.StringFieldType),
		},
	},
	"video_monitoring": {
		Schema: bigquery.Schema{
			req("video_id", bigquery.StringFieldType),
			req("channel_id", bigquery.StringFieldType),
			col("published_at", bigquery.TimestampFieldType),
			col("discovered_at", bigquery.TimestampFieldType),
			col("monitoring_until", bigquery.TimestampFieldType),
			col("is_active", bigquery.BooleanFieldType),
			col("deactivated_at", bigquery.TimestampFieldType),
			col("inactive_reason", bigquery.StringFieldType),
		},
		ClusterFields: []string{"channel_id"},
	},
	"dim_channel": {
		Schema: bigquery.Schema{
			req("channel_id", bigquery.StringFieldType),
			col("channel_title", bigquery.StringFieldType),
			col("description", bigquery.StringFieldType),
			col("custom_url", bigquery.StringFieldType),
			col("country", bigquery.StringFieldType),
			col("published_at", bigquery.TimestampFieldType),
			col("thumbnail_url", bigquery.StringFieldType),
			col("subscriber_count", bigquery.IntegerFieldType),
			col("video_count", bigquery.IntegerFieldType),
			col("view_count", bigquery.IntegerFieldType),
			col("hidden_subscriber_count", bigquery.BooleanFieldType),
			col("keywords", bigquery.StringFieldType),
			col("uploads_playlist_id", bigquery.StringFieldType),
			rep("topic_categories", bigquery.StringFieldType),
			col("made_for_kids", bigquery.BooleanFieldType),
			col("updated_at", bigquery.TimestampFieldType),
		},
	},
	"dim_video": {
		Schema: bigquery.Schema{
			req("video_id", bigquery.StringFieldType),
			req("channel_id", bigquery.StringFieldType),
			col("title", bigquery.StringFieldType),
			col("description", bigquery.StringFieldType),
			col("published_at", bigquery.TimestampFieldType),
			col("category_id", bigquery.StringFieldType),
			col("duration_seconds", bigquery.IntegerFieldType),
			col("definition", bigquery.StringFieldType),
			col("has_captions", bigquery.BooleanFieldType),
			col("licensed_content", bigquery.BooleanFieldType),
			col("made_for_kids", bigquery.BooleanFieldType),
			col("has_paid_placement", bigquery.BooleanFieldType),
			col("is_livestream", bigquery.BooleanFieldType),
			col("thumbnail_url", bigquery.StringFieldType),
			rep("tags", bigquery.StringFieldType),
			rep("topic_categories", bigquery.StringFieldType),
			col("first_seen_at", bigquery.TimestampFieldType),
			col("updated_at", bigquery.TimestampFieldType),
		},
		ClusterFields: []string{"channel_id"},
	},
	"dim_category": {
		Schema: bigquery.Schema{
			req("category_id", bigquery.StringFieldType),
			col("category_name", bigquery.StringFieldType),
		},
	},
	"dim_date": {
		Schema: bigquery.Schema{
			req("date_key", bigquery.IntegerFieldType),
			col("full_date", bigquery.DateFieldType),
			col("year", bigquery.IntegerFieldType),
			col("quarter", bigquery.IntegerFieldType),
			col("month", bigquery.IntegerFieldType),
			col("day_of_month", bigquery.IntegerFieldType),
			col("day_of_week", bigquery.IntegerFieldType),
			col("day_name", bigquery.StringFieldType),
			col("is_weekend", bigquery.BooleanFieldType),
			col("is_us_holiday", bigquery.BooleanFieldType),
		},
	},
	"dim_video_transcript": {
		Schema: bigquery.Schema{
			req("video_id", bigquery.StringFieldType),
			col("transcript_uri", bigquery.StringFieldType),
			col("language", bigquery.StringFieldType),
			col("word_count", bigquery.IntegerFieldType),
			col("readability_grade", bigquery.FloatFieldType),
			col("fetched_at", bigquery.TimestampFieldType),
			col("updated_at", bigquery.TimestampFieldType),
		},
	},
	"fact_channel_snapshot": {
		Schema: bigquery.Schema{
			req("snapshot_date", bigquery.DateFieldType),
			req("snapshot_ts", bigquery.TimestampFieldType),
			req("channel_id", bigquery.StringFieldType),
			col("subscriber_count", bigquery.IntegerFieldType),
			col("view_count", bigquery.IntegerFieldType),
			col("video_count", bigquery.IntegerFieldType),
			col("subs_delta", bigquery.IntegerFieldType),
			col("views_delta", bigquery.IntegerFieldType),
			col("videos_delta", bigquery.IntegerFieldType),
		},
		PartitionField: "snapshot_date",
		ClusterFields:  []string{"channel_id"},
	},
	"fact_video_snapshot": {
		Schema: bigquery.Schema{
			req("snapshot_date", bigquery.DateFieldType),
			req("snapshot_type", bigquery.StringFieldType),
			req("video_id", bigquery.StringFieldType),
			req("channel_id", bigquery.StringFieldType),
			col("actual_captured_at", bigquery.TimestampFieldType),
			col("actual_hours_since_publish", bigquery.FloatFieldType),
			col("view_count", bigquery.IntegerFieldType),
			col("like_count", bigquery.IntegerFieldType),
			col("comment_count", bigquery.IntegerFieldType),
			col("views_delta", bigquery.IntegerFieldType),
			col("likes_delta", bigquery.IntegerFieldType),
			col("comments_delta", bigquery.IntegerFieldType),
		},
		PartitionField: "snapshot_date",
		ClusterFields:  []string{"video_id", "channel_id"},
	},
	"fact_comment": {
		Schema: bigquery.Schema{
			req("comment_id", bigquery.StringFieldType),
			req("video_id", bigquery.StringFieldType),
			req("channel_id", bigquery.StringFieldType),
			col("parent_comment_id", bigquery.StringFieldType),
			col("is_reply", bigquery.BooleanFieldType),
			col("sample_rank", bigquery.IntegerFieldType),
			col("sample_strategy", bigquery.StringFieldType),
			col("author_display_name", bigquery.StringFieldType),
			col("author_channel_id", bigquery.StringFieldType),
			col("comment_text", bigquery.StringFieldType),
			col("like_count", bigquery.IntegerFieldType),
			col("reply_count", bigquery.IntegerFieldType),
			col("published_at", bigquery.TimestampFieldType),
			col("updated_at", bigquery.TimestampFieldType),
			col("pulled_at", bigquery.TimestampFieldType),
			req("pull_date", bigquery.DateFieldType),
		},
		PartitionField: "pull_date",
		ClusterFields:  []string{"video_id", "channel_id"},
	},
	"ml_feature_channel": {
		Schema: bigquery.Schema{
			req("channel_id", bigquery.StringFieldType),
			req("computed_date", bigquery.DateFieldType),
			col("subscriber_count", bigquery.IntegerFieldType),
			col("subscriber_tier", bigquery.StringFieldType),
			col("channel_age_days", bigquery.IntegerFieldType),
			col("total_videos", bigquery.IntegerFieldType),
			col("avg_views_per_video", bigquery.FloatFieldType),
			col("upload_frequency_per_week", bigquery.FloatFieldType),
		},
	},
	"ml_feature_video_performance": {
		Schema: bigquery.Schema{
			req("video_id", bigquery.StringFieldType),
			req("computed_date", bigquery.DateFieldType),
			col("channel_id", bigquery.StringFieldType),
			col("views_1h", bigquery.IntegerFieldType),
			col("views_2h", bigquery.IntegerFieldType),
			col("views_3h", bigquery.IntegerFieldType),
			col("views_4h", bigquery.IntegerFieldType),
			col("views_6h", bigquery.IntegerFieldType),
			col("views_8h", bigquery.IntegerFieldType),
			col("views_10h", bigquery.IntegerFieldType),
			col("views_12h", bigquery.IntegerFieldType),
			col("views_14h", bigquery.IntegerFieldType),
			col("views_16h", bigquery.IntegerFieldType),
			col("views_18h", bigquery.IntegerFieldType),
			col("views_20h", bigquery.IntegerFieldType),
			col("views_22h", bigquery.IntegerFieldType),
			col("views_24h", bigquery.IntegerFieldType),
			col("views_36h", bigquery.IntegerFieldType),
			col("views_48h", bigquery.IntegerFieldType),
			col("views_72h", bigquery.IntegerFieldType),
			col("views_velocity_24h", bigquery.FloatFieldType),
			col("like_rate_24h", bigquery.FloatFieldType),
			col("comment_rate_24h", bigquery.FloatFieldType),
			col("channel_percentile_24h", bigquery.FloatFieldType),
		},
	},
	"ml_feature_video_content": {
		Schema: bigquery.Schema{
			req("video_id", bigquery.StringFieldType),
			req("computed_date", bigquery.DateFieldType),
			col("title_length", bigquery.IntegerFieldType),
			col("title_word_count", bigquery.IntegerFieldType),
			col("title_has_emoji", bigquery.BooleanFieldType),
			col("title_caps_ratio", bigquery.FloatFieldType),
			col("title_has_number", bigquery.BooleanFieldType),
			col("title_has_question", bigquery.BooleanFieldType),
			col("title_has_brackets", bigquery.BooleanFieldType),
			col("title_power_words", bigquery.IntegerFieldType),
			col("description_length", bigquery.IntegerFieldType),
			col("description_link_count", bigquery.IntegerFieldType),
			col("tag_count", bigquery.IntegerFieldType),
			col("duration_seconds", bigquery.IntegerFieldType),
			col("duration_bucket", bigquery.StringFieldType),
		},
	},
	"ml_feature_temporal": {
		Schema: bigquery.Schema{
			req("video_id", bigquery.StringFieldType),
			req("computed_date", bigquery.DateFieldType),
			col("published_at", bigquery.TimestampFieldType),
			col("publish_hour", bigquery.IntegerFieldType),
			col("publish_day_of_week", bigquery.IntegerFieldType),
			col("is_weekend_publish", bigquery.BooleanFieldType),
			col("is_us_holiday", bigquery.BooleanFieldType),
			col("days_since_channel_created", bigquery.IntegerFieldType),
		},
	},
	"ml_feature_comment_aggregates": {
		Schema: bigquery.Schema{
			req("video_id", bigquery.StringFieldType),
			req("computed_date", bigquery.DateFieldType),
			col("comment_count", bigquery.IntegerFieldType),
			col("unique_authors", bigquery.IntegerFieldType),
			col("avg_comment_length", bigquery.FloatFieldType),
			col("avg_like_count", bigquery.FloatFieldType),
			col("reply_ratio", bigquery.FloatFieldType),
		},
	},
	"mart_video_summary": {
		Schema: bigquery.Schema{
			req("video_id", bigquery.StringFieldType),
			col("channel_id", bigquery.StringFieldType),
			col("title", bigquery.StringFieldType),
			col("published_at", bigquery.TimestampFieldType),
			col("duration_seconds", bigquery.IntegerFieldType),
			col("views_24h", bigquery.IntegerFieldType),
			col("views_72h", bigquery.IntegerFieldType),
			col("like_rate_24h", bigquery.FloatFieldType),
			col("comment_rate_24h", bigquery.FloatFieldType),
			col("subscriber_count", bigquery.IntegerFieldType),
			col("refreshed_at", bigquery.TimestampFieldType),
		},
	},
	"mart_channel_daily": {
		Schema: bigquery.Schema{
			req("snapshot_date", bigquery.DateFieldType),
			req("channel_id", bigquery.StringFieldType),
			col("subscriber_count", bigquery.IntegerFieldType),
			col("view_count", bigquery.IntegerFieldType),
			col("video_count", bigquery.IntegerFieldType),
			col("subs_delta", bigquery.IntegerFieldType),
			col("views_delta", bigquery.IntegerFieldType),
			col("refreshed_at", bigquery.TimestampFieldType),
		},
		PartitionField: "snapshot_date",
		ClusterFields:  []string{"channel_id"},
	},
	"pipeline_run_log": {
		Schema: bigquery.Schema{
			req("run_id", bigquery.StringFieldType),
			col("pipeline_name", bigquery.StringFieldType),
			col("started_at", bigquery.TimestampFieldType),
			col("finished_at", bigquery.TimestampFieldType),
			col("status", bigquery.StringFieldType),
			col("detail", bigquery.StringFieldType),
		},
	},
	"data_quality_results": {
		Schema: bigquery.Schema{
			req("check_id", bigquery.StringFieldType),
			col("table_name", bigquery.StringFieldType),
			col("check_name", bigquery.StringFieldType),
			col("passed", bigquery.BooleanFieldType),
			col("checked_at", bigquery.TimestampFieldType),
			col("detail", bigquery.StringFieldType),
		},
	},
	"ml_model_registry": {
		Schema: bigquery.Schema{
			req("model_id", bigquery.StringFieldType),
			col("model_name", bigquery.StringFieldType),
			col("version", bigquery.StringFieldType),
			col("trained_at", bigquery.TimestampFieldType),
			col("metrics_json", bigquery.StringFieldType),
			col("is_active", bigquery.BooleanFieldType),
		},
	},
	"ml_prediction_log": {
		Schema: bigquery.Schema{
			req("prediction_id", bigquery.StringFieldType),
			col("model_id", bigquery.StringFieldType),
			col("video_id", bigquery.StringFieldType),
			col("predicted_at", bigquery.TimestampFieldType),
			col("horizon_hours", bigquery.IntegerFieldType),
			col("predicted_views", bigquery.IntegerFieldType),
			col("actual_views", bigquery.IntegerFieldType),
		},
	},
	"ml_experiment_log": {
		Schema: bigquery.Schema{
			req("experiment_id", bigquery.StringFieldType),
			col("model_name", bigquery.StringFieldType),
			col("params_json", bigquery.StringFieldType),
			col("metrics_json", bigquery.StringFieldType),
			col("created_at", bigquery.TimestampFieldType),
			col("notes", bigquery.StringFieldType),
		},
	},
}

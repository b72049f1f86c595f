package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/metrics"
	"github.com/youpredict/you-predict-core/internal/warehouse"
)

// SampleStrategyRelevance records how the comment sample was drawn.
const SampleStrategyRelevance = "relevance"

// CommentTransformer flattens comment threads into fact_comment rows.
// Rows merge on comment_id; only the mutable fields change on update.
type CommentTransformer struct {
	wh     warehouse.Service
	logger *zap.Logger
}

// NewCommentTransformer builds a CommentTransformer.
func NewCommentTransformer(wh warehouse.Service, logger *zap.Logger) *CommentTransformer {
	return &CommentTransformer{wh: wh, logger: logger}
}

type commentRow struct {
	commentID       string
	parentCommentID *string
	isReply         bool
	sampleRank      *int64
	author          *string
	authorChannelID *string
	text            *string
	likeCount       int64
	replyCount      int64
	publishedAt     *time.Time
	updatedAt       *time.Time
}

// flattenThreads turns raw comment threads into ordered rows. Top-level
// comments get a 1-based sample rank in response order; replies carry
// their parent id and no rank. Threads without a usable top-level comment
// are skipped entirely, replies included.
func flattenThreads(raw []json.RawMessage, logger *zap.Logger) []commentRow {
	threads := decodeItems[CommentThread](raw, logger, "comment_thread")
	var rows []commentRow
	rank := int64(0)
	for _, th := range threads {
		if th.Snippet == nil || th.Snippet.TopLevelComment == nil ||
			th.Snippet.TopLevelComment.ID == "" || th.Snippet.TopLevelComment.Snippet == nil {
			logger.Warn("comment thread without usable top-level comment skipped",
				zap.String("thread_id", th.ID))
			continue
		}
		top := th.Snippet.TopLevelComment
		rank++
		r := rank
		rows = append(rows, commentFromSnippet(top, nil, &r, th.Snippet.TotalReplyCount))

		if th.Replies == nil {
			continue
		}
		for _, reply := range th.Replies.Comments {
			if reply == nil || reply.ID == "" || reply.Snippet == nil {
				continue
			}
			parent := top.ID
			rows = append(rows, commentFromSnippet(reply, &parent, nil, 0))
		}
	}
	return rows
}

func commentFromSnippet(c *Comment, parentID *string, rank *int64, replyCount int64) commentRow {
	s := c.Snippet
	return commentRow{
		commentID:       c.ID,
		parentCommentID: parentID,
		isReply:         parentID != nil,
		sampleRank:      rank,
		author:          strOrNil(s.AuthorDisplayName),
		authorChannelID: authorChannel(s.AuthorChannelID),
		text:            strOrNil(s.TextDisplay),
		likeCount:       s.LikeCount,
		replyCount:      replyCount,
		publishedAt:     parseTimestamp(s.PublishedAt),
		updatedAt:       parseTimestamp(s.UpdatedAt),
	}
}

func authorChannel(a *AuthorChannelID) *string {
	if a == nil {
		return nil
	}
	return strOrNil(a.Value)
}

func (r commentRow) sourceSelect(videoID, channelID string, pulledAt time.Time) string {
	isReply := r.isReply
	like := r.likeCount
	replies := r.replyCount
	return fmt.Sprintf(
		"SELECT %s AS comment_id, %s AS video_id, %s AS channel_id, %s AS parent_comment_id, "+
			"%s AS is_reply, %s AS sample_rank, %s AS sample_strategy, %s AS author_display_name, "+
			"%s AS author_channel_id, %s AS comment_text, %s AS like_count, %s AS reply_count, "+
			"%s AS published_at, %s AS updated_at, %s AS pulled_at, DATE(%s) AS pull_date",
		warehouse.SQLString(&r.commentID),
		warehouse.SQLString(&videoID),
		warehouse.SQLString(&channelID),
		warehouse.SQLString(r.parentCommentID),
		warehouse.SQLBool(&isReply),
		warehouse.SQLInt(r.sampleRank),
		"'"+SampleStrategyRelevance+"'",
		warehouse.SQLString(r.author),
		warehouse.SQLString(r.authorChannelID),
		warehouse.SQLString(r.text),
		warehouse.SQLInt(&like),
		warehouse.SQLInt(&replies),
		warehouse.SQLTimestamp(r.publishedAt),
		warehouse.SQLTimestamp(r.updatedAt),
		warehouse.SQLTimestamp(&pulledAt),
		warehouse.SQLTimestamp(&pulledAt),
	)
}

const commentMergeTemplate = `
MERGE ` + "`{project}.{dataset}.fact_comment`" + ` T
USING (
%s
) S
ON T.comment_id = S.comment_id
WHEN MATCHED THEN UPDATE SET
  like_count = S.like_count,
  reply_count = S.reply_count,
  comment_text = S.comment_text,
  updated_at = S.updated_at,
  pulled_at = S.pulled_at,
  pull_date = S.pull_date
WHEN NOT MATCHED THEN INSERT (
  comment_id, video_id, channel_id, parent_comment_id, is_reply,
  sample_rank, sample_strategy, author_display_name, author_channel_id,
  comment_text, like_count, reply_count, published_at, updated_at,
  pulled_at, pull_date
) VALUES (
  S.comment_id, S.video_id, S.channel_id, S.parent_comment_id, S.is_reply,
  S.sample_rank, S.sample_strategy, S.author_display_name,
  S.author_channel_id, S.comment_text, S.like_count, S.reply_count,
  S.published_at, S.updated_at, S.pulled_at, S.pull_date
)`

// Transform flattens and upserts one comment pull for a video.
func (t *CommentTransformer) Transform(ctx context.Context, raw []json.RawMessage, videoID, channelID string, pulledAt time.Time) (Result, error) {
	rows := flattenThreads(raw, t.logger)
	if len(rows) == 0 {
		return Result{Table: "fact_comment", WriteMethod: "merge"}, nil
	}
	selects := make([]string, len(rows))
	for i, r := range rows {
		selects[i] = r.sourceSelect(videoID, channelID, pulledAt.UTC())
	}
	sql := fmt.Sprintf(commentMergeTemplate, strings.Join(selects, "\nUNION ALL\n"))
	affected, err := t.wh.RunMerge(ctx, sql)
	if err != nil {
		return Result{}, fmt.Errorf("transform: fact_comment merge for %s: %w", videoID, err)
	}
	metrics.ObserveTransformRows("fact_comment", affected)
	t.logger.Debug("comments upserted",
		zap.String("video_id", videoID),
		zap.Int("rows", len(rows)),
		zap.Int64("affected", affected))
	return Result{Table: "fact_comment", RowsWritten: affected, WriteMethod: "merge"}, nil
}

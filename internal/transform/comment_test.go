package transform

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

func threadJSON(t *testing.T, threads ...CommentThread) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(threads))
	for i, th := range threads {
		b, err := json.Marshal(th)
		require.NoError(t, err)
		out[i] = b
	}
	return out
}

func comment(id, author, text string, likes int64) *Comment {
	return &Comment{
		ID: id,
		Snippet: &CommentSnippet{
			AuthorDisplayName: author,
			AuthorChannelID:   &AuthorChannelID{Value: "UC" + author},
			TextDisplay:       text,
			LikeCount:         likes,
			PublishedAt:       "2025-01-16T10:00:00Z",
			UpdatedAt:         "2025-01-16T10:00:00Z",
		},
	}
}

func TestFlattenThreads(t *testing.T) {
	t.Parallel()

	raw := threadJSON(t, CommentThread{
		ID: "c1",
		Snippet: &CommentThreadSnippet{
			TopLevelComment: comment("c1", "alice", "Great video", 10),
			TotalReplyCount: 1,
		},
		Replies: &CommentThreadReplies{
			Comments: []*Comment{comment("c1.r1", "bob", "Agreed", 2)},
		},
	})

	rows := flattenThreads(raw, zap.NewNop())
	require.Len(t, rows, 2)

	top := rows[0]
	assert.Equal(t, "c1", top.commentID)
	assert.False(t, top.isReply)
	assert.Nil(t, top.parentCommentID)
	require.NotNil(t, top.sampleRank)
	assert.Equal(t, int64(1), *top.sampleRank)
	assert.Equal(t, int64(1), top.replyCount)

	reply := rows[1]
	assert.Equal(t, "c1.r1", reply.commentID)
	assert.True(t, reply.isReply)
	require.NotNil(t, reply.parentCommentID)
	assert.Equal(t, "c1", *reply.parentCommentID)
	assert.Nil(t, reply.sampleRank)
}

func TestFlattenThreadsRankOrder(t *testing.T) {
	t.Parallel()

	raw := threadJSON(t,
		CommentThread{ID: "t1", Snippet: &CommentThreadSnippet{TopLevelComment: comment("a", "x", "first", 0)}},
		CommentThread{ID: "t2", Snippet: &CommentThreadSnippet{TopLevelComment: comment("b", "y", "second", 0)}},
		CommentThread{ID: "t3", Snippet: &CommentThreadSnippet{TopLevelComment: comment("c", "z", "third", 0)}},
	)

	rows := flattenThreads(raw, zap.NewNop())
	require.Len(t, rows, 3)
	for i, row := range rows {
		require.NotNil(t, row.sampleRank)
		assert.Equal(t, int64(i+1), *row.sampleRank)
	}
}

func TestFlattenThreadsSkipsUnusable(t *testing.T) {
	t.Parallel()

	raw := threadJSON(t,
		// No top-level comment: the whole thread, replies included, is dropped.
		CommentThread{
			ID:      "t1",
			Snippet: &CommentThreadSnippet{},
			Replies: &CommentThreadReplies{Comments: []*Comment{comment("orphan", "x", "hi", 0)}},
		},
		CommentThread{ID: "t2", Snippet: &CommentThreadSnippet{TopLevelComment: comment("keep", "y", "ok", 0)}},
	)

	rows := flattenThreads(raw, zap.NewNop())
	require.Len(t, rows, 1)
	assert.Equal(t, "keep", rows[0].commentID)
	require.NotNil(t, rows[0].sampleRank)
	// The skipped thread does not consume a rank.
	assert.Equal(t, int64(1), *rows[0].sampleRank)
}

func TestCommentTransform(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{2}
	tr := NewCommentTransformer(fake, zap.NewNop())

	raw := threadJSON(t, CommentThread{
		ID: "c1",
		Snippet: &CommentThreadSnippet{
			TopLevelComment: comment("c1", "alice", "Don't miss it!\nTimestamps:\n0:00 Intro", 10),
			TotalReplyCount: 1,
		},
		Replies: &CommentThreadReplies{
			Comments: []*Comment{comment("c1.r1", "bob", "Agreed", 2)},
		},
	})

	pulled := time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC)
	res, err := tr.Transform(context.Background(), raw, "vid1", "UCabc", pulled)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsWritten)

	require.Len(t, fake.Merges, 1)
	sql := fake.Merges[0].SQL
	// Text goes through literal escaping; the raw newline never reaches
	// the statement.
	assert.Contains(t, sql, `Don\'t miss it!\nTimestamps:\n0:00 Intro`)
	assert.NotContains(t, sql, "Don't")
	assert.Contains(t, sql, "ON T.comment_id = S.comment_id")
	assert.Contains(t, sql, "'relevance'")
}

func TestCommentTransformEmpty(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	tr := NewCommentTransformer(fake, zap.NewNop())

	res, err := tr.Transform(context.Background(), nil, "vid1", "UCabc", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsWritten)
	assert.Empty(t, fake.Merges)
}

package transform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/metrics"
	"github.com/youpredict/you-predict-core/internal/textstat"
	"github.com/youpredict/you-predict-core/internal/warehouse"
)

// TranscriptTransformer upserts transcript statistics into
// dim_video_transcript. The text itself stays in the blob store; the row
// keeps a pointer plus word count and readability.
type TranscriptTransformer struct {
	wh     warehouse.Service
	logger *zap.Logger
}

// NewTranscriptTransformer builds a TranscriptTransformer.
func NewTranscriptTransformer(wh warehouse.Service, logger *zap.Logger) *TranscriptTransformer {
	return &TranscriptTransformer{wh: wh, logger: logger}
}

const transcriptMerge = `
MERGE ` + "`{project}.{dataset}.dim_video_transcript`" + ` T
USING (SELECT @video_id AS video_id) S
ON T.video_id = S.video_id
WHEN MATCHED THEN UPDATE SET
  transcript_uri = @transcript_uri,
  language = @language,
  word_count = @word_count,
  readability_grade = @readability_grade,
  fetched_at = @fetched_at,
  updated_at = CURRENT_TIMESTAMP()
WHEN NOT MATCHED THEN INSERT (
  video_id, transcript_uri, language, word_count, readability_grade,
  fetched_at, updated_at
) VALUES (
  S.video_id, @transcript_uri, @language, @word_count, @readability_grade,
  @fetched_at, CURRENT_TIMESTAMP()
)`

// Transform upserts one transcript. An empty transcript writes nothing
// and is not an error.
func (t *TranscriptTransformer) Transform(ctx context.Context, text, videoID, language, blobURI string, fetchedAt time.Time) (Result, error) {
	if strings.TrimSpace(text) == "" {
		t.logger.Info("empty transcript, nothing to write", zap.String("video_id", videoID))
		return Result{Table: "dim_video_transcript", WriteMethod: "merge"}, nil
	}
	affected, err := t.wh.RunMerge(ctx, transcriptMerge,
		warehouse.Param{Name: "video_id", Value: videoID},
		warehouse.Param{Name: "transcript_uri", Value: blobURI},
		warehouse.Param{Name: "language", Value: language},
		warehouse.Param{Name: "word_count", Value: int64(textstat.WordCount(text))},
		warehouse.Param{Name: "readability_grade", Value: textstat.FleschKincaidGrade(text)},
		warehouse.Param{Name: "fetched_at", Value: fetchedAt.UTC()},
	)
	if err != nil {
		return Result{}, fmt.Errorf("transform: dim_video_transcript merge for %s: %w", videoID, err)
	}
	metrics.ObserveTransformRows("dim_video_transcript", affected)
	return Result{Table: "dim_video_transcript", RowsWritten: affected, WriteMethod: "merge"}, nil
}

// Package transform maps raw API payloads into idempotent warehouse
// upserts. Each transformer re-run with the same payload converges on the
// same warehouse state.
package transform

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/timeutil"
)

// Result reports one table write.
type Result struct {
	Table       string
	RowsWritten int64
	WriteMethod string
}

// SafeInt converts a string-typed counter to *int64. Missing, empty and
// unparseable values become nil, never zero: a hidden statistic is not
// the same as a zero one.
func SafeInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// BestThumbnail picks the highest-resolution rendition available.
func BestThumbnail(t *ThumbnailSet) *string {
	if t == nil {
		return nil
	}
	for _, r := range []*Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if r != nil && r.URL != "" {
			url := r.URL
			return &url
		}
	}
	return nil
}

// delta returns current-previous, or nil when either side is unknown.
func delta(current, previous *int64) *int64 {
	if current == nil || previous == nil {
		return nil
	}
	d := *current - *previous
	return &d
}

// parseTimestamp converts a wire timestamp to *time.Time, nil when absent
// or malformed.
func parseTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := timeutil.ParseISO(raw)
	if err != nil {
		return nil
	}
	return &t
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// decodeItems unmarshals raw API items, skipping the ones that fail to
// decode so one bad item never sinks the batch.
func decodeItems[T any](raw []json.RawMessage, logger *zap.Logger, kind string) []T {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			logger.Warn("undecodable item skipped",
				zap.String("kind", kind), zap.Error(err))
			continue
		}
		out = append(out, item)
	}
	return out
}

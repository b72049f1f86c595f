// Package features computes the ML feature tables as idempotent warehouse
// merges, in a fixed dependency order.
package features

// ExecutionOrder lists the feature computations in dependency order.
// channel must run before video_performance: the performance merge joins
// the freshly computed channel aggregates for its percentile rank.
var ExecutionOrder = []string{
	"channel",
	"video_performance",
	"video_content",
	"temporal",
	"comment_aggregates",
}

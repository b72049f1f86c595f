package features

import (
	"context"
	"embed"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Runner executes the feature merges. Each statement upserts on its
// natural key, so re-running a feature, or the whole set, is safe.
type Runner struct {
	wh     warehouse.Service
	logger *zap.Logger
}

// NewRunner builds a Runner.
func NewRunner(wh warehouse.Service, logger *zap.Logger) *Runner {
	return &Runner{wh: wh, logger: logger}
}

// statement loads the embedded MERGE for one feature.
func statement(name string) (string, error) {
	b, err := sqlFiles.ReadFile("sql/" + name + ".sql")
	if err != nil {
		return "", fmt.Errorf("features: unknown feature %q: %w", name, err)
	}
	return string(b), nil
}

// Run executes one feature computation and returns the affected rows.
func (r *Runner) Run(ctx context.Context, name string) (int64, error) {
	sql, err := statement(name)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	affected, err := r.wh.RunMerge(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("features: %s: %w", name, err)
	}
	r.logger.Info("feature computed",
		zap.String("feature", name),
		zap.Int64("rows", affected),
		zap.Duration("took", time.Since(start)))
	return affected, nil
}

// RunAll executes every feature in ExecutionOrder, stopping at the first
// failure so downstream features never run against stale upstream rows.
func (r *Runner) RunAll(ctx context.Context) (int64, error) {
	var total int64
	for _, name := range ExecutionOrder {
		n, err := r.Run(ctx, name)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

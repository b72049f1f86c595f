package features

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

func TestExecutionOrder(t *testing.T) {
	t.Parallel()

	require.Len(t, ExecutionOrder, 5)

	idx := make(map[string]int, len(ExecutionOrder))
	for i, name := range ExecutionOrder {
		idx[name] = i
	}
	// The performance merge joins the channel aggregates, so channel must
	// come first.
	assert.Less(t, idx["channel"], idx["video_performance"])
}

func TestStatementsLoad(t *testing.T) {
	t.Parallel()

	for _, name := range ExecutionOrder {
		sql, err := statement(name)
		require.NoError(t, err, name)
		assert.Contains(t, sql, "MERGE", name)
		assert.Contains(t, sql, "{project}.{dataset}", name)
	}

	_, err := statement("nope")
	assert.Error(t, err)
}

func TestRunAll(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{5, 4, 3, 2, 1}
	r := NewRunner(fake, zap.NewNop())

	total, err := r.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)

	require.Len(t, fake.Merges, 5)
	assert.Contains(t, fake.Merges[0].SQL, "ml_feature_channel")
	assert.Contains(t, fake.Merges[1].SQL, "ml_feature_video_performance")
	assert.Contains(t, fake.Merges[4].SQL, "ml_feature_comment_aggregates")
}

func TestRunAllStopsOnFailure(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeErr = errors.New("boom")
	r := NewRunner(fake, zap.NewNop())

	_, err := r.RunAll(context.Background())
	require.Error(t, err)
	// Only the first statement ran.
	assert.Len(t, fake.Merges, 1)
}

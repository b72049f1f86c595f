package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/warehouse"
)

func newEngine(fake *warehouse.Fake) *Engine {
	return NewEngine(fake, 72, zap.NewNop())
}

func TestRegisterVideo(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{1, 0}
	e := newEngine(fake)

	published := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	isNew, err := e.RegisterVideo(context.Background(), "vid1", "UCabc", published)
	require.NoError(t, err)
	assert.True(t, isNew)

	// Same video again: the merge matches and affects nothing.
	isNew, err = e.RegisterVideo(context.Background(), "vid1", "UCabc", published)
	require.NoError(t, err)
	assert.False(t, isNew)

	require.Len(t, fake.Merges, 2)
	call := fake.Merges[0]
	assert.Contains(t, call.SQL, "WHEN NOT MATCHED")
	assert.NotContains(t, call.SQL, "WHEN MATCHED")

	params := map[string]any{}
	for _, p := range call.Params {
		params[p.Name] = p.Value
	}
	assert.Equal(t, "vid1", params["video_id"])
	assert.Equal(t, published.Add(72*time.Hour), params["monitoring_until"])
}

func TestIsVideoRegistered(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.QueryResults = [][]warehouse.Row{
		{{"x": int64(1)}},
		nil,
	}
	e := newEngine(fake)

	ok, err := e.IsVideoRegistered(context.Background(), "vid1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.IsVideoRegistered(context.Background(), "vid2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetActiveVideoIDs(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.QueryResults = [][]warehouse.Row{
		{{"video_id": "a"}, {"video_id": "b"}},
	}
	e := newEngine(fake)

	ids, err := e.GetActiveVideoIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Contains(t, fake.Queries[0].SQL, "SELECT DISTINCT")
}

func TestExpireMonitoringIdempotent(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{3, 0}
	e := newEngine(fake)

	n, err := e.ExpireMonitoring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// Immediately again: the expired rows are no longer active, so the
	// update matches nothing.
	n, err = e.ExpireMonitoring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.Contains(t, fake.Merges[0].SQL, "is_active = TRUE")
	assert.Contains(t, fake.Merges[0].SQL, "monitoring_window_expired")
}

func TestDeactivateVideo(t *testing.T) {
	t.Parallel()

	fake := warehouse.NewFake()
	fake.MergeResults = []int64{1}
	e := newEngine(fake)

	n, err := e.DeactivateVideo(context.Background(), "vid1", ReasonVideoDeleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = e.DeactivateVideo(context.Background(), "vid1", InactiveReason("bogus"))
	require.Error(t, err)
	assert.Len(t, fake.Merges, 1)
}

func TestInactiveReasonValid(t *testing.T) {
	t.Parallel()

	for _, r := range []InactiveReason{ReasonWindowExpired, ReasonVideoDeleted, ReasonVideoPrivated, ReasonManualStop} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, InactiveReason("other").Valid())
}

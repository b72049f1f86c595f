package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if webhookNotificationsTotal == nil || fanoutTasksTotal == nil ||
		transformRowsTotal == nil || pipelineRunsTotal == nil ||
		httpRequestsTotal == nil || httpRequestDurationSeconds == nil ||
		apiQuotaUsed == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveHelpers(t *testing.T) {
	ObserveWebhook("discovered")
	if val := testutil.ToFloat64(webhookNotificationsTotal.WithLabelValues("discovered")); val < 1 {
		t.Errorf("Expected webhook counter >= 1, got %f", val)
	}

	ObserveFanoutTask("created")
	if val := testutil.ToFloat64(fanoutTasksTotal.WithLabelValues("created")); val < 1 {
		t.Errorf("Expected fanout counter >= 1, got %f", val)
	}

	ObserveTransformRows("dim_video", 7)
	if val := testutil.ToFloat64(transformRowsTotal.WithLabelValues("dim_video")); val < 7 {
		t.Errorf("Expected transform rows >= 7, got %f", val)
	}

	// Zero rows must not create a series.
	ObserveTransformRows("never_written", 0)
	if val := testutil.ToFloat64(transformRowsTotal.WithLabelValues("never_written")); val != 0 {
		t.Errorf("Expected no rows for never_written, got %f", val)
	}

	ObservePipelineRun("compute-features", "ok", 250*time.Millisecond)
	if val := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("compute-features", "ok")); val < 1 {
		t.Errorf("Expected pipeline run counter >= 1, got %f", val)
	}

	ObserveHTTPRequest("GET", "/healthz", 200, 10*time.Millisecond)
	if val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "200")); val < 1 {
		t.Errorf("Expected http request counter >= 1, got %f", val)
	}

	SetAPIQuotaUsed(42)
	if val := testutil.ToFloat64(apiQuotaUsed); val != 42 {
		t.Errorf("Expected quota gauge 42, got %f", val)
	}
}

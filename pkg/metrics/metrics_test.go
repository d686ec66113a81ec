package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Gauges(t *testing.T) {
	r := NewRecorder()

	r.RecordsLoaded.Set(12)
	r.Profiles.Set(10)
	r.SetSegments(map[string]int{"champions": 3, "hibernating": 7})
	r.SetSelected("high_value_women", 4)

	assert.Equal(t, 12.0, testutil.ToFloat64(r.RecordsLoaded))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.Profiles))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.SegmentCustomers.WithLabelValues("champions")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.SelectedCustomers.WithLabelValues("high_value_women")))

	r.SetSegments(map[string]int{"champions": 1})
	assert.Equal(t, 1, testutil.CollectAndCount(r.SegmentCustomers))
}

func TestRecorder_ObserveStage(t *testing.T) {
	r := NewRecorder()
	r.ObserveStage("load", time.Now().Add(-10*time.Millisecond))
	r.ObserveStage("score", time.Now())

	assert.Equal(t, 2, testutil.CollectAndCount(r.StageDuration, "rfm_stage_duration_seconds"))
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.Profiles.Set(5)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Profiles))

	n, err := testutil.GatherAndCount(a.Registry(), "rfm_profiles", "rfm_records_loaded")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecorder_Push(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		body, _ := io.ReadAll(req.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRecorder()
	r.Profiles.Set(42)
	require.NoError(t, r.Push(context.Background(), srv.URL, "rfm_segmentation", "run-1"))

	assert.Equal(t, "/metrics/job/rfm_segmentation/run_id/run-1", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestRecorder_PushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewRecorder().Push(context.Background(), srv.URL, "rfm_segmentation", "run-1")
	assert.Error(t, err)
}

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/tasks/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/tasks/{id}", "404"))
	assert.Equal(t, float64(2), got)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestRecordUpload(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordUpload("tasks", 2048, nil)
	m.RecordUpload("tasks", 10, errors.New("too large"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.UploadsTotal.WithLabelValues("tasks", "stored")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UploadsTotal.WithLabelValues("tasks", "rejected")))
	assert.Equal(t, float64(2048), testutil.ToFloat64(m.UploadBytesTotal.WithLabelValues("tasks")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordSeed("smart", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `taskie_seed_runs_total{mode="smart",outcome="success"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}

func TestInstancesAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.RecordSeed("force", nil)
	assert.Equal(t, float64(0), testutil.ToFloat64(b.SeedRunsTotal.WithLabelValues("force", "success")))
}

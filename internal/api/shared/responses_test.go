package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondWithSuccess(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithSuccess(w, r, http.StatusCreated, "Task created successfully", map[string]string{"title": "t"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Task created successfully", body["message"])
	assert.Equal(t, map[string]any{"title": "t"}, body["data"])
	assert.NotContains(t, body, "count")
}

func TestRespondWithList(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithList(w, r, []string{"a", "b"})
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, []any{"a", "b"}, body["data"])
	assert.NotContains(t, body, "message")

	w = httptest.NewRecorder()
	RespondWithList[string](w, r, nil)
	body = decodeBody(t, w)
	assert.Equal(t, float64(0), body["count"], "an empty list still reports its count")
	assert.Equal(t, []any{}, body["data"])
}

func TestRespondWithErrorIncludesTraceID(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(SetTraceID(r.Context()))
	RespondWithError(w, r, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Task not found", body["message"])
	assert.Equal(t, GetTraceID(r.Context()), body["trace_id"])
	assert.NotContains(t, body, "error")
}

func TestRespondWithErrorAndLogRedactsDetails(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	r = r.WithContext(logger.WithLogger(context.Background(), log))

	err := errors.New("dial postgres://admin:hunter2@db:5432/taskie failed")
	RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Error fetching tasks", err)

	body := decodeBody(t, w)
	assert.Equal(t, "Error fetching tasks", body["message"])
	assert.NotContains(t, w.Body.String(), "hunter2")

	logger.AssertLogContains(t, buf, "API error response")
	logger.AssertLogContains(t, buf, "Error fetching tasks")
	assert.NotContains(t, buf.String(), "hunter2", "credentials must be redacted from logs")

	entries, parseErr := buf.Entries()
	require.NoError(t, parseErr)
	require.NotEmpty(t, entries)
	assert.Equal(t, "ERROR", entries[len(entries)-1]["level"])
}

func TestRespondWithErrorAndLogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		opts   []ResponseOption
		want   string
	}{
		{"client error", http.StatusBadRequest, nil, "DEBUG"},
		{"elevated client error", http.StatusUnauthorized, []ResponseOption{WithElevatedLogLevel()}, "WARN"},
		{"rate limited", http.StatusTooManyRequests, nil, "WARN"},
		{"server error", http.StatusServiceUnavailable, nil, "ERROR"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			log, buf := logger.NewTestLogger(t)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(logger.WithLogger(r.Context(), log))

			RespondWithErrorAndLog(w, r, tc.status, "msg", errors.New("boom"), tc.opts...)

			entries, err := buf.Entries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.want, entries[0]["level"])
		})
	}
}

func TestWithErrorDetail(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Something went wrong!", nil,
		WithErrorDetail("nil map write"))

	body := decodeBody(t, w)
	assert.Equal(t, "nil map write", body["error"])
}

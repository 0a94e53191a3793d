package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudecast/internal/app"
	"crudecast/internal/blob"
	"crudecast/internal/domain/attention"
	"crudecast/internal/history"
)

type fakeForecaster struct {
	result  *app.Result
	runErr  error
	records []history.PredictionRecord
	histErr error
	loaded  bool

	gotTarget time.Time
}

func (f *fakeForecaster) Run(ctx context.Context, targetDate time.Time) (*app.Result, error) {
	f.gotTarget = targetDate
	return f.result, f.runErr
}

func (f *fakeForecaster) History() ([]history.PredictionRecord, error) {
	return f.records, f.histErr
}

func (f *fakeForecaster) ModelLoaded() bool { return f.loaded }

func record(featureDate string, delta float64) history.PredictionRecord {
	return history.PredictionRecord{
		FeatureDate:       featureDate,
		PredictionForDate: featureDate,
		PredictedDelta:    delta,
		NumEntities:       2,
		TopContributors:   []attention.Contributor{{Entity: "US", Weight: 1}},
	}
}

func TestHealth(t *testing.T) {
	h := NewHandlers(&fakeForecaster{loaded: true}, "v1.2.0")

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v1.2.0", resp.Version)
	assert.True(t, resp.ModelLoaded)
}

func TestPredictEmptyBody(t *testing.T) {
	f := &fakeForecaster{result: &app.Result{Date: "2026-03-04", PredictedDelta: 0.4, PredictedDirection: "UP"}}
	h := NewHandlers(f, "v1")

	w := httptest.NewRecorder()
	h.Predict(w, httptest.NewRequest(http.MethodPost, "/predict", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.gotTarget.IsZero())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UP", resp["predicted_direction"])
	assert.Equal(t, "2026-03-04", resp["date"])
}

func TestPredictPinsDate(t *testing.T) {
	f := &fakeForecaster{result: &app.Result{Date: "2026-03-04"}}
	h := NewHandlers(f, "v1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"date":"2026-03-04"}`))
	h.Predict(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), f.gotTarget)
}

func TestPredictRejectsBadDate(t *testing.T) {
	h := NewHandlers(&fakeForecaster{}, "v1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"date":"03/04/2026"}`))
	h.Predict(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictNoDataIs404(t *testing.T) {
	h := NewHandlers(&fakeForecaster{runErr: blob.ErrNotFound}, "v1")

	w := httptest.NewRecorder()
	h.Predict(w, httptest.NewRequest(http.MethodPost, "/predict", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	h = NewHandlers(&fakeForecaster{runErr: errors.New("boom")}, "v1")
	w = httptest.NewRecorder()
	h.Predict(w, httptest.NewRequest(http.MethodPost, "/predict", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHistoryLimit(t *testing.T) {
	f := &fakeForecaster{records: []history.PredictionRecord{
		record("2026-03-02", 0.1), record("2026-03-03", 0.2), record("2026-03-04", 0.3),
	}}
	h := NewHandlers(f, "v1")

	w := httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/history?limit=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "2026-03-03", resp.Records[0].FeatureDate)
	assert.Equal(t, "2026-03-04", resp.Records[1].FeatureDate)
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	h := NewHandlers(&fakeForecaster{}, "v1")

	w := httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/history?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEmptyIsValidJSON(t *testing.T) {
	h := NewHandlers(&fakeForecaster{}, "v1")

	w := httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/history", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"records":[],"count":0}`, w.Body.String())
}

func TestContributorsLatestRecord(t *testing.T) {
	f := &fakeForecaster{records: []history.PredictionRecord{
		record("2026-03-03", 0.2), record("2026-03-04", 0.3),
	}}
	h := NewHandlers(f, "v1")

	w := httptest.NewRecorder()
	h.Contributors(w, httptest.NewRequest(http.MethodGet, "/contributors", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp ContributorsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-04", resp.FeatureDate)
	require.Len(t, resp.TopContributors, 1)
	assert.Equal(t, "US", resp.TopContributors[0].Entity)
}

func TestContributorsEmptyHistoryIs404(t *testing.T) {
	h := NewHandlers(&fakeForecaster{}, "v1")

	w := httptest.NewRecorder()
	h.Contributors(w, httptest.NewRequest(http.MethodGet, "/contributors", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

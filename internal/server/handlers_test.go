package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotwatch/lotwatch/internal/database"
	"github.com/lotwatch/lotwatch/internal/lot"
	"github.com/lotwatch/lotwatch/internal/models"
)

type fakeProcessor struct {
	err    error
	frames int
	latest []byte
}

func (f *fakeProcessor) ProcessFrame(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.frames++
	return nil
}

func (f *fakeProcessor) LatestFrame() ([]byte, bool) {
	return f.latest, f.latest != nil
}

// Entrance is the frame origin: space 2 ranks first, then 0, then 1.
func rankedLayout(t *testing.T) *lot.Layout {
	t.Helper()
	l, err := lot.ParseLayout([]byte(`[
		{"id": 0, "points": [[40,40],[60,40],[60,60],[40,60]]},
		{"id": 1, "points": [[100,100],[120,100],[120,120],[100,120]]},
		{"id": 2, "points": [[0,0],[20,0],[20,20],[0,20]]},
		{"id": 3, "points": [[200,200],[220,200],[220,220],[200,220]]}
	]`))
	require.NoError(t, err)
	return l
}

func testServer(t *testing.T, proc FrameProcessor) (*echo.Echo, *database.MemoryRepo) {
	t.Helper()
	repo := database.NewMemoryRepo()
	require.NoError(t, repo.InitSpaces(context.Background(), []int{0, 1, 2, 3}))

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	srv := NewServer(repo, rankedLayout(t), proc, logger)
	e := echo.New()
	srv.Routes(e)
	return e, repo
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestParkingStatus(t *testing.T) {
	e, repo := testServer(t, &fakeProcessor{})
	_, err := repo.ApplyStatus(context.Background(), map[int]bool{1: true})
	require.NoError(t, err)

	rec := get(e, "/api/parking_status")
	require.Equal(t, http.StatusOK, rec.Code)

	var spaces []models.ParkingSpace
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spaces))
	require.Len(t, spaces, 4)
	assert.Equal(t, 0, spaces[0].ID)
	assert.False(t, spaces[0].Occupied)
	assert.True(t, spaces[1].Occupied)
	assert.NotNil(t, spaces[1].LastUpdated)
}

func TestRecommendations(t *testing.T) {
	e, repo := testServer(t, &fakeProcessor{})

	rec := get(e, "/api/parking_recommendations")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Available)
	assert.Equal(t, 4, result.TotalAvailable)
	// Top three by entrance distance.
	assert.Equal(t, []int{2, 0, 1}, result.BestSpots)
	assert.Equal(t, "Recommended spots: 2, 0, 1", result.Message)

	// Occupy the closest space; ranking shifts.
	_, err := repo.ApplyStatus(context.Background(), map[int]bool{2: true})
	require.NoError(t, err)

	rec = get(e, "/api/parking_recommendations")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.TotalAvailable)
	assert.Equal(t, []int{0, 1, 3}, result.BestSpots)
}

func TestRecommendationsLotFull(t *testing.T) {
	e, repo := testServer(t, &fakeProcessor{})
	_, err := repo.ApplyStatus(context.Background(), map[int]bool{0: true, 1: true, 2: true, 3: true})
	require.NoError(t, err)

	rec := get(e, "/api/parking_recommendations")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Available)
	assert.Empty(t, result.BestSpots)
	assert.Equal(t, "No parking spaces available", result.Message)
}

func TestAvailableSpaces(t *testing.T) {
	e, repo := testServer(t, &fakeProcessor{})
	_, err := repo.ApplyStatus(context.Background(), map[int]bool{0: true, 2: true})
	require.NoError(t, err)

	rec := get(e, "/api/available_spaces")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AvailableSpacesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.AvailableSpaces, 2)
	assert.Equal(t, 1, result.AvailableSpaces[0].SpaceID)
	assert.Equal(t, 3, result.AvailableSpaces[1].SpaceID)
}

func TestProcessFrame(t *testing.T) {
	proc := &fakeProcessor{}
	e, _ := testServer(t, proc)

	rec := get(e, "/api/process_frame")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ProcessFrameResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "Frame processed", result.Message)
	assert.Equal(t, 1, proc.frames)
}

func TestProcessFrameFailure(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("camera offline")}
	e, _ := testServer(t, proc)

	rec := get(e, "/api/process_frame")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ProcessFrameResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "camera offline")
}

func TestHistory(t *testing.T) {
	e, repo := testServer(t, &fakeProcessor{})
	ctx := context.Background()
	_, err := repo.ApplyStatus(ctx, map[int]bool{0: true})
	require.NoError(t, err)
	_, err = repo.ApplyStatus(ctx, map[int]bool{0: false, 1: true})
	require.NoError(t, err)

	rec := get(e, "/api/parking_history")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 3)

	// Filtered to one space.
	rec = get(e, "/api/parking_history?space_id=1")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].SpaceID)

	rec = get(e, "/api/parking_history?space_id=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	e, _ := testServer(t, &fakeProcessor{})
	rec := get(e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

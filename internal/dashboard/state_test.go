package dashboard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotwatch/lotwatch/internal/models"
)

func snapshot(flags ...bool) []models.ParkingSpace {
	spaces := make([]models.ParkingSpace, len(flags))
	for i, occupied := range flags {
		spaces[i] = models.ParkingSpace{ID: i, Occupied: occupied}
	}
	return spaces
}

func TestUtilization(t *testing.T) {
	tests := []struct {
		name     string
		occupied int
		total    int
		want     float64
	}{
		{"empty lot reads zero", 0, 0, 0},
		{"none occupied", 0, 10, 0},
		{"all occupied", 10, 10, 100},
		{"one third rounds to one decimal", 1, 3, 33.3},
		{"two thirds rounds up", 2, 3, 66.7},
		{"half", 5, 10, 50},
		{"one of eight", 1, 8, 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Utilization(tt.occupied, tt.total))
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(snapshot(true, false, true, false, false))
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Occupied)
	assert.Equal(t, 3, s.Available)
	assert.Equal(t, 40.0, s.Utilization)
	assert.Equal(t, s.Total, s.Occupied+s.Available)

	empty := Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Utilization)
}

func TestBuildGridMirrorsSnapshot(t *testing.T) {
	state := State{Snapshot: snapshot(true, false, true)}
	grid := BuildGrid(state)

	require.Len(t, grid, 3)
	for i, cell := range grid {
		assert.Equal(t, state.Snapshot[i].ID, cell.ID)
		assert.Equal(t, state.Snapshot[i].Occupied, cell.Occupied)
		assert.Equal(t, MarkerNone, cell.Marker)
	}
}

func TestBuildGridMarkers(t *testing.T) {
	spaces := make([]models.ParkingSpace, 10)
	for i := range spaces {
		spaces[i] = models.ParkingSpace{ID: i}
	}
	state := State{
		Snapshot: spaces,
		Recommendation: &models.RecommendationResult{
			Available:      true,
			TotalAvailable: 10,
			BestSpots:      []int{5, 2, 9},
		},
	}

	grid := BuildGrid(state)
	require.Len(t, grid, 10)
	assert.Equal(t, MarkerBest, grid[5].Marker)
	assert.Equal(t, MarkerGood, grid[2].Marker)
	assert.Equal(t, MarkerGood, grid[9].Marker)
	for _, i := range []int{0, 1, 3, 4, 6, 7, 8} {
		assert.Equal(t, MarkerNone, grid[i].Marker, "space %d", i)
	}
}

func TestBuildGridNoAvailability(t *testing.T) {
	// Markers are suppressed when available is false, even if best_spots
	// carries stale content, and absent best_spots must not break anything.
	tests := []struct {
		name string
		rec  *models.RecommendationResult
	}{
		{"unavailable with stale spots", &models.RecommendationResult{Available: false, BestSpots: []int{1}}},
		{"unavailable without spots", &models.RecommendationResult{Available: false}},
		{"no recommendation fetched", nil},
		{"available without spots", &models.RecommendationResult{Available: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := BuildGrid(State{Snapshot: snapshot(false, true), Recommendation: tt.rec})
			require.Len(t, grid, 2)
			assert.Equal(t, MarkerNone, grid[0].Marker)
			assert.Equal(t, MarkerNone, grid[1].Marker)
		})
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, State{
		Snapshot: snapshot(true, false, false),
		Recommendation: &models.RecommendationResult{
			Available:      true,
			TotalAvailable: 2,
			BestSpots:      []int{1, 2},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Available: 2  Occupied: 1  Total: 3  Utilization: 33.3%")
	assert.Contains(t, out, "2 spaces available")
	assert.Contains(t, out, "(best: 1)")
	assert.Contains(t, out, "[BEST]")
	assert.Contains(t, out, "[good]")
}

func TestRenderNoAvailability(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, State{
		Snapshot:       snapshot(true, true),
		Recommendation: &models.RecommendationResult{Available: false},
	})

	out := buf.String()
	assert.Contains(t, out, "No spaces available")
	assert.Contains(t, out, "Utilization: 100.0%")
	assert.NotContains(t, out, "[BEST]")
}

package dashboard

import (
	"math"
	"time"

	"github.com/lotwatch/lotwatch/internal/models"
)

// Marker distinguishes recommended spots in the grid.
type Marker int

const (
	MarkerNone Marker = iota
	MarkerGood
	MarkerBest
)

func (m Marker) String() string {
	switch m {
	case MarkerBest:
		return "best"
	case MarkerGood:
		return "good"
	default:
		return ""
	}
}

// Cell is one rendered grid element.
type Cell struct {
	ID       int
	Occupied bool
	Marker   Marker
}

// State is the last known good view data. It is replaced wholesale on each
// successful fetch; a failed fetch leaves the previous value untouched.
type State struct {
	Snapshot        []models.ParkingSpace
	Recommendation  *models.RecommendationResult
	StatusUpdatedAt time.Time
	RecsUpdatedAt   time.Time
}

// Summary holds the derived counters. They are always recomputed from the
// raw occupied flags, never trusted from the server.
type Summary struct {
	Total       int
	Occupied    int
	Available   int
	Utilization float64
}

// Utilization is occupied/total as a percentage rounded to one decimal.
// An empty lot reads as 0, not NaN.
func Utilization(occupied, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(occupied)/float64(total)*1000) / 10
}

// Summarize derives the counters for a snapshot.
func Summarize(snapshot []models.ParkingSpace) Summary {
	s := Summary{Total: len(snapshot)}
	for _, space := range snapshot {
		if space.Occupied {
			s.Occupied++
		}
	}
	s.Available = s.Total - s.Occupied
	s.Utilization = Utilization(s.Occupied, s.Total)
	return s
}

// BuildGrid produces one cell per space in snapshot order. When the
// recommendation reports availability, the top-ranked spot is marked best
// and the other ranked spots good, matched by identifier. A missing or
// unavailable recommendation yields an unmarked grid.
func BuildGrid(state State) []Cell {
	markers := make(map[int]Marker)
	if rec := state.Recommendation; rec != nil && rec.Available {
		for i, id := range rec.BestSpots {
			if i == 0 {
				markers[id] = MarkerBest
			} else {
				markers[id] = MarkerGood
			}
		}
	}

	cells := make([]Cell, len(state.Snapshot))
	for i, space := range state.Snapshot {
		cells[i] = Cell{
			ID:       space.ID,
			Occupied: space.Occupied,
			Marker:   markers[space.ID],
		}
	}
	return cells
}

package dashboard

import (
	"fmt"
	"io"
	"strings"
)

// Render writes a terminal view of the state: the slot grid, the derived
// counters and the recommendation line. Pure over its inputs.
func Render(w io.Writer, state State) {
	summary := Summarize(state.Snapshot)
	grid := BuildGrid(state)

	fmt.Fprintln(w, "Parking Lot")
	fmt.Fprintln(w, strings.Repeat("-", 11))
	for _, cell := range grid {
		fmt.Fprintf(w, "  space %-4d %s%s\n", cell.ID, statusLabel(cell.Occupied), markerLabel(cell.Marker))
	}

	fmt.Fprintf(w, "Available: %d  Occupied: %d  Total: %d  Utilization: %.1f%%\n",
		summary.Available, summary.Occupied, summary.Total, summary.Utilization)

	rec := state.Recommendation
	switch {
	case rec == nil:
		// No recommendation fetched yet; leave the section out.
	case !rec.Available:
		fmt.Fprintln(w, "No spaces available")
	default:
		fmt.Fprintf(w, "%d spaces available", rec.TotalAvailable)
		if len(rec.BestSpots) > 0 {
			fmt.Fprintf(w, " (best: %d)", rec.BestSpots[0])
		}
		fmt.Fprintln(w)
	}
}

func statusLabel(occupied bool) string {
	if occupied {
		return "OCCUPIED "
	}
	return "AVAILABLE"
}

func markerLabel(m Marker) string {
	switch m {
	case MarkerBest:
		return "  [BEST]"
	case MarkerGood:
		return "  [good]"
	default:
		return ""
	}
}

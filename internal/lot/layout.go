// Package lot models the parking lot geometry: the polygon covering each
// space in the camera frame, occupancy checks against vehicle detections,
// and ranking of available spaces by distance to the entrance.
package lot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Space is one parking space as annotated in the layout file.
type Space struct {
	ID      int
	Polygon Polygon
}

// Layout is the set of annotated spaces for a lot.
type Layout struct {
	spaces   []Space
	byID     map[int]int
	entrance Point
}

type spaceJSON struct {
	ID     int         `json:"id"`
	Points [][]float64 `json:"points"`
}

// LoadLayout reads a bounding-box annotation file: a JSON array of
// {id, points: [[x,y], ...]} objects.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout builds a Layout from raw annotation JSON.
func ParseLayout(data []byte) (*Layout, error) {
	var raw []spaceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	l := &Layout{byID: make(map[int]int, len(raw))}
	for _, s := range raw {
		if len(s.Points) < 3 {
			return nil, fmt.Errorf("space %d: polygon needs at least 3 points, got %d", s.ID, len(s.Points))
		}
		poly := make(Polygon, 0, len(s.Points))
		for _, p := range s.Points {
			if len(p) != 2 {
				return nil, fmt.Errorf("space %d: malformed point %v", s.ID, p)
			}
			poly = append(poly, Point{X: p[0], Y: p[1]})
		}
		if _, dup := l.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate space id %d", s.ID)
		}
		l.byID[s.ID] = len(l.spaces)
		l.spaces = append(l.spaces, Space{ID: s.ID, Polygon: poly})
	}
	return l, nil
}

// Spaces returns the annotated spaces in file order.
func (l *Layout) Spaces() []Space {
	return l.spaces
}

// Len returns the number of annotated spaces.
func (l *Layout) Len() int {
	return len(l.spaces)
}

// SetEntrance overrides the entrance reference point used for ranking.
// The zero value (frame origin, top-left) matches the source footage.
func (l *Layout) SetEntrance(p Point) {
	l.entrance = p
}

// Rank orders the given space IDs by distance from the entrance, closest
// first. Ties break on ascending ID. Unknown IDs are dropped.
func (l *Layout) Rank(ids []int) []int {
	type ranked struct {
		id   int
		dist float64
	}
	rs := make([]ranked, 0, len(ids))
	for _, id := range ids {
		idx, ok := l.byID[id]
		if !ok {
			continue
		}
		rs = append(rs, ranked{id: id, dist: distance(l.spaces[idx].Polygon.Centroid(), l.entrance)})
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].dist != rs[j].dist {
			return rs[i].dist < rs[j].dist
		}
		return rs[i].id < rs[j].id
	})
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.id
	}
	return out
}

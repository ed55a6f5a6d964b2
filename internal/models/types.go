package models

import "time"

// ParkingSpace is a single space in a status snapshot. A snapshot is the
// ordered list of spaces, ascending by ID.
type ParkingSpace struct {
	ID          int        `json:"id"`
	Occupied    bool       `json:"occupied"`
	LastUpdated *time.Time `json:"last_updated"`
}

// RecommendationResult is the payload of /api/parking_recommendations.
// BestSpots is ranked best-first and only meaningful when Available is true.
type RecommendationResult struct {
	Available      bool   `json:"available"`
	TotalAvailable int    `json:"total_available,omitempty"`
	BestSpots      []int  `json:"best_spots,omitempty"`
	Message        string `json:"message,omitempty"`
}

// ProcessFrameResult reports the outcome of a detection cycle. Failures are
// carried in-band: Success false with a human-readable Message.
type ProcessFrameResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HistoryEntry records a status transition for a space. Rows are only
// written when the occupancy flag actually changes.
type HistoryEntry struct {
	SpaceID   int       `json:"space_id"`
	Occupied  bool      `json:"occupied"`
	Timestamp time.Time `json:"timestamp"`
}

// AvailableSpace is an element of the /api/available_spaces payload.
type AvailableSpace struct {
	SpaceID     int        `json:"space_id"`
	LastUpdated *time.Time `json:"last_updated"`
}

// AvailableSpacesResult wraps the available spaces list.
type AvailableSpacesResult struct {
	AvailableSpaces []AvailableSpace `json:"available_spaces"`
}

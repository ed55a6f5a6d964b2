package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lotwatch/lotwatch/internal/models"
)

const bestSpotLimit = 3

func (s *Server) handleParkingStatus(c echo.Context) error {
	spaces, err := s.repo.ListSpaces(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load parking status")
	}
	if spaces == nil {
		spaces = []models.ParkingSpace{}
	}
	return c.JSON(http.StatusOK, spaces)
}

func (s *Server) handleRecommendations(c echo.Context) error {
	available, err := s.repo.ListAvailable(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load recommendations")
	}

	if len(available) == 0 {
		return c.JSON(http.StatusOK, models.RecommendationResult{
			Available: false,
			Message:   "No parking spaces available",
		})
	}

	ids := make([]int, len(available))
	for i, space := range available {
		ids[i] = space.ID
	}

	// Closest to the entrance first.
	ranked := s.layout.Rank(ids)
	if len(ranked) > bestSpotLimit {
		ranked = ranked[:bestSpotLimit]
	}

	return c.JSON(http.StatusOK, models.RecommendationResult{
		Available:      true,
		TotalAvailable: len(available),
		BestSpots:      ranked,
		Message:        fmt.Sprintf("Recommended spots: %s", joinIDs(ranked)),
	})
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func (s *Server) handleAvailableSpaces(c echo.Context) error {
	available, err := s.repo.ListAvailable(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load available spaces")
	}

	result := models.AvailableSpacesResult{AvailableSpaces: []models.AvailableSpace{}}
	for _, space := range available {
		result.AvailableSpaces = append(result.AvailableSpaces, models.AvailableSpace{
			SpaceID:     space.ID,
			LastUpdated: space.LastUpdated,
		})
	}
	return c.JSON(http.StatusOK, result)
}

// handleProcessFrame reports failures in-band so the dashboard can surface
// the reason without parsing error bodies.
func (s *Server) handleProcessFrame(c echo.Context) error {
	if err := s.processor.ProcessFrame(c.Request().Context()); err != nil {
		return c.JSON(http.StatusOK, models.ProcessFrameResult{
			Success: false,
			Message: err.Error(),
		})
	}

	s.InvalidateCache()
	return c.JSON(http.StatusOK, models.ProcessFrameResult{
		Success: true,
		Message: "Frame processed",
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	spaceID := -1
	if raw := c.QueryParam("space_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid space_id")
		}
		spaceID = id
	}

	entries, err := s.repo.History(c.Request().Context(), spaceID, 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load history")
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
	}
	return c.String(http.StatusOK, "ok")
}

// Package detector turns camera frames into parking occupancy. Frames come
// from a FrameSource, vehicle candidates from an external inference runtime,
// and the per-space decision is pure geometry against the lot layout. Results
// are persisted through the space repository; only transitions are written.
package detector

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/lotwatch/lotwatch/internal/database"
	"github.com/lotwatch/lotwatch/internal/lot"
	"github.com/lotwatch/lotwatch/internal/models"
)

// Detection thresholds, carried over from the tuned source pipeline.
const (
	minConfidence = 0.3
	iouThreshold  = 0.3
)

// vehicleClasses are the visdrone class IDs treated as parked vehicles.
var vehicleClasses = map[int]bool{3: true, 4: true, 8: true}

// Prometheus collectors, registered by the server setup.
var (
	FramesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lotwatch_frames_processed_total",
		Help: "Total detection cycles completed",
	})
	FrameErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lotwatch_frame_errors_total",
		Help: "Total detection cycles that failed",
	})
	StatusChanges = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lotwatch_status_changes_total",
		Help: "Total space occupancy transitions recorded",
	})
)

// Detector runs detection cycles and keeps the latest frame for streaming.
type Detector struct {
	source  FrameSource
	fetcher DetectionFetcher
	layout  *lot.Layout
	repo    database.SpaceRepository
	logger  *logrus.Logger

	mu          sync.Mutex
	latestFrame []byte
	onUpdate    func(snapshot []models.ParkingSpace)
}

func New(source FrameSource, fetcher DetectionFetcher, layout *lot.Layout, repo database.SpaceRepository, logger *logrus.Logger) *Detector {
	return &Detector{
		source:  source,
		fetcher: fetcher,
		layout:  layout,
		repo:    repo,
		logger:  logger,
	}
}

// OnUpdate registers a callback invoked with a fresh snapshot after a cycle
// that changed at least one space.
func (d *Detector) OnUpdate(fn func(snapshot []models.ParkingSpace)) {
	d.mu.Lock()
	d.onUpdate = fn
	d.mu.Unlock()
}

// Bootstrap seeds the spaces table from the layout when empty.
func (d *Detector) Bootstrap(ctx context.Context) error {
	ids := make([]int, 0, d.layout.Len())
	for _, s := range d.layout.Spaces() {
		ids = append(ids, s.ID)
	}
	return d.repo.InitSpaces(ctx, ids)
}

// ProcessFrame runs one full detection cycle: frame, inference, occupancy,
// persistence. Safe for concurrent callers; the manual trigger and the
// scheduler can overlap.
func (d *Detector) ProcessFrame(ctx context.Context) error {
	frame, err := d.source.Next(ctx)
	if err != nil {
		FrameErrors.Inc()
		return fmt.Errorf("no frame available: %w", err)
	}

	detections, err := d.fetcher.Detect(ctx, frame)
	if err != nil {
		FrameErrors.Inc()
		return fmt.Errorf("inference failed: %w", err)
	}

	status := d.Occupancy(detections)

	changed, err := d.repo.ApplyStatus(ctx, status)
	if err != nil {
		FrameErrors.Inc()
		return fmt.Errorf("failed to store occupancy: %w", err)
	}

	d.mu.Lock()
	d.latestFrame = frame
	notify := d.onUpdate
	d.mu.Unlock()

	FramesProcessed.Inc()
	StatusChanges.Add(float64(changed))

	d.logger.WithFields(logrus.Fields{
		"detections": len(detections),
		"changed":    changed,
	}).Debug("Processed frame")

	if changed > 0 && notify != nil {
		if snapshot, err := d.repo.ListSpaces(ctx); err == nil {
			notify(snapshot)
		}
	}
	return nil
}

// Occupancy decides the flag for every annotated space. A space is occupied
// when a confident vehicle detection has its center inside the space polygon,
// or overlaps it past the IoU threshold.
func (d *Detector) Occupancy(detections []Detection) map[int]bool {
	vehicles := make([]Detection, 0, len(detections))
	for _, det := range detections {
		if vehicleClasses[det.ClassID] && det.Confidence >= minConfidence {
			vehicles = append(vehicles, det)
		}
	}

	status := make(map[int]bool, d.layout.Len())
	for _, space := range d.layout.Spaces() {
		status[space.ID] = spaceOccupied(space.Polygon, vehicles)
	}
	return status
}

func spaceOccupied(poly lot.Polygon, vehicles []Detection) bool {
	for _, v := range vehicles {
		box := v.box()
		if poly.Contains(box.Center()) {
			return true
		}
		if lot.IoU(box, poly) > iouThreshold {
			return true
		}
	}
	return false
}

// LatestFrame returns the most recently processed frame, if any.
func (d *Detector) LatestFrame() ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latestFrame == nil {
		return nil, false
	}
	return d.latestFrame, true
}

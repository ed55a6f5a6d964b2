// Package lotwatch implements a parking occupancy service and its dashboard
// client.
//
// # Architecture
//
// The service is structured into several key packages:
//   - lot: lot geometry, occupancy math and spot ranking
//   - detector: frame acquisition and the detection cycle
//   - database: Postgres-backed parking store
//   - server: HTTP API, MJPEG feed and websocket stream
//   - scheduler: periodic frame processing
//   - dashboard: the polling dashboard client
//   - models: shared payload structures
//
// Key Features
//
//   - Occupancy inference:
//     Vehicle detections from an external runtime are matched against the
//     annotated space polygons; only status transitions are persisted,
//     with a history trail.
//
//   - Recommendations:
//     Available spaces are ranked by their distance to the lot entrance
//     and the top spots surfaced to dashboards.
//
//   - Dashboards:
//     Clients poll /api/parking_status and /api/parking_recommendations,
//     or subscribe to /ws/status for pushed snapshots.
//
// Example Usage
//
//	client := dashboard.NewClient("http://localhost:8080", 10*time.Second)
//	snapshot, err := client.FetchStatus(ctx)
//
// For more information about specific packages, see their respective
// documentation.
package lotwatch

// Package services implements the business logic between the HTTP
// handlers and the ingestion, session and storage packages.
//
// DatasetService runs uploads end to end: the workbook is processed, the
// result is staged as the session's working copy and then committed to the
// durable store, with progress pushed to the session's websocket clients.
// The view helpers (Options, Apply, Summarize, MapView, Cluster, Export)
// are pure functions over a table so handlers can compose them.
//
// HealthService backs the health, readiness and version endpoints.
package services

// Package http implements the HTTP handlers of the UGB monitor API. It is a
// thin layer between HTTP transport and the dataset services, kept to HTTP
// concerns only.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Repository
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handlers
//
//	- DatasetHandler: upload, filtered records, filter options, KPI summary,
//	  map groups, cluster lookup, xlsx export and reload
//	- HealthHandler: health, readiness, liveness and version
//	- WebSocketHandler: upgrades /ws and attaches the client to the hub
//	- MetricsHandler: Prometheus exposition and JSON runtime counters
//	- ClientLogHandler: log entries reported by API clients
//
// Read endpoints take multi-valued up3, ulp and status query parameters.
// When none is present the selection stored in the session applies.
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem documents by the shared
// ErrorHandler. Rejected workbooks answer 422 with the error type and the
// Indonesian message shown to users.
package http

package http

import (
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// StatsProvider reports live counters of a component.
type StatsProvider interface {
	Stats() map[string]interface{}
}

// MetricsHandler exposes the Prometheus registry and a JSON view of the
// runtime and websocket counters.
type MetricsHandler struct {
	prometheus http.Handler
	hub        StatsProvider
}

// NewMetricsHandler creates a new metrics handler. Either argument may be
// nil.
func NewMetricsHandler(prometheus http.Handler, hub StatsProvider) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus, hub: hub}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMetrics)
	r.Get("/stats", h.GetStats)
	return r
}

// GetMetrics serves the Prometheus exposition format.
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.NotFound(w, r)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// GetStats returns runtime and websocket counters as JSON.
func (h *MetricsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response := map[string]interface{}{
		"goroutines":   runtime.NumGoroutine(),
		"heap_alloc":   mem.HeapAlloc,
		"heap_objects": mem.HeapObjects,
		"num_gc":       mem.NumGC,
	}
	if h.hub != nil {
		response["websocket"] = h.hub.Stats()
	}
	render.JSON(w, r, response)
}

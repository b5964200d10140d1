package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// ClientCounter reports connected live-update clients.
type ClientCounter interface {
	ClientCount() int
}

// Pinger is implemented by stores that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataDir   string
	backend   string
	hub       ClientCounter
	session   Pinger
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthOption configures a HealthService.
type HealthOption func(*HealthService)

// WithBuildTime records the build timestamp reported by Version.
func WithBuildTime(buildTime string) HealthOption {
	return func(hs *HealthService) { hs.buildTime = buildTime }
}

// WithStorage names the durable backend and the local data directory.
func WithStorage(backend, dataDir string) HealthOption {
	return func(hs *HealthService) { hs.backend, hs.dataDir = backend, dataDir }
}

// WithHub reports live-update clients.
func WithHub(hub ClientCounter) HealthOption {
	return func(hs *HealthService) { hs.hub = hub }
}

// WithSessionStore checks the session store on readiness.
func WithSessionStore(p Pinger) HealthOption {
	return func(hs *HealthService) { hs.session = p }
}

// NewHealthService creates a new health service
func NewHealthService(version string, logger *slog.Logger, opts ...HealthOption) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	hs := &HealthService{
		version:   version,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
	for _, opt := range opts {
		opt(hs)
	}
	return hs
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"storage":   hs.checkStorage(),
			"session":   hs.checkSession(ctx),
			"websocket": hs.checkWebSocket(),
		},
	}

	for name, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "Service not ready",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
		"backend":    hs.backend,
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkStorage() ServiceHealth {
	if hs.backend != "local" {
		return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%s backend configured", hs.backend)}
	}
	info, err := os.Stat(hs.dataDir)
	if err != nil || !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("Data directory not found: %s", hs.dataDir)}
	}
	f, err := os.CreateTemp(hs.dataDir, ".ready-*")
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("Cannot write to data directory: %v", err)}
	}
	f.Close()
	os.Remove(f.Name())
	return ServiceHealth{Status: "ready", Message: "Data directory is writable"}
}

func (hs *HealthService) checkSession(ctx context.Context) ServiceHealth {
	if hs.session == nil {
		return ServiceHealth{Status: "ready", Message: "in-memory session store"}
	}
	if err := hs.session.Ping(ctx); err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("Session store unreachable: %v", err)}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "ready", Message: "live updates disabled"}
	}
	return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount())}
}

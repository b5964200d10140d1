package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ugbmonitor/internal/errors"
	"ugbmonitor/internal/middleware"
)

// ClientLogHandler forwards log entries reported by API clients, such as
// a dashboard that failed to render a map group, into the server log.
type ClientLogHandler struct {
	logger    *slog.Logger
	validator *middleware.RequestValidator
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(logger *slog.Logger, errorHandler *errors.ErrorHandler) *ClientLogHandler {
	return &ClientLogHandler{
		logger:    logger.With(slog.String("handler", "client_log")),
		validator: middleware.NewRequestValidator(logger, errorHandler),
	}
}

// LogRequest represents a client log entry
type LogRequest struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"max=200"`
}

var clientLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Handle processes POST /api/client-log
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		errors.WriteError(w, errors.NewValidationError("Invalid request format"))
		return
	}
	if !h.validator.Check(w, r, req) {
		return
	}

	level, ok := clientLevels[req.Level]
	if !ok {
		level = slog.LevelInfo
	}

	attrs := []slog.Attr{
		slog.String("client_source", req.Source),
		slog.String("session_id", middleware.SessionID(r.Context())),
	}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}
	h.logger.LogAttrs(r.Context(), level, req.Message, attrs...)

	render.JSON(w, r, map[string]interface{}{
		"success": true,
	})
}

package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/exporter"
	"ugbmonitor/internal/middleware"
	"ugbmonitor/internal/services"
	"ugbmonitor/internal/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipartOverhead is the slack allowed on top of the workbook size for
// multipart boundaries and headers.
const multipartOverhead = 1 << 20

// DatasetHandlerConfig holds the per-route limits of the dataset API.
type DatasetHandlerConfig struct {
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

// DatasetHandler serves the cabinet dataset: upload, filtered reads,
// KPI summary, map data and export.
type DatasetHandler struct {
	service      *services.DatasetService
	files        *validation.FileValidator
	validator    *middleware.RequestValidator
	cfg          DatasetHandlerConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(
	service *services.DatasetService,
	files *validation.FileValidator,
	cfg DatasetHandlerConfig,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *DatasetHandler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 2 * time.Minute
	}
	return &DatasetHandler{
		service:      service,
		files:        files,
		validator:    middleware.NewRequestValidator(logger, errorHandler),
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes on a new router.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the dataset routes to r.
func (h *DatasetHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.cfg.UploadTimeout, h.logger))
		r.Use(middleware.ContentTypeValidator("multipart/form-data"))
		r.Post("/upload", h.Upload)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.cfg.RequestTimeout, h.logger))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/records", h.Records)
		r.Get("/filters", h.FilterOptions)
		r.With(middleware.ContentTypeValidator("application/json")).Put("/filters", h.SaveFilters)
		r.Get("/summary", h.Summary)
		r.Get("/map", h.Map)
		r.Get("/cluster", h.Cluster)
		r.Post("/reload", h.Reload)
	})

	r.With(middleware.Timeout(h.cfg.RequestTimeout, h.logger)).Get("/export", h.Export)
}

// RecordsResponse is a filtered page of the dataset.
type RecordsResponse struct {
	Columns []string               `json:"columns"`
	Rows    [][]string             `json:"rows"`
	Count   int                    `json:"count"`
	Total   int                    `json:"total"`
	Filters validation.FilterQuery `json:"filters"`
}

// FiltersResponse lists the filter options and the active selection.
type FiltersResponse struct {
	Options  services.FilterOptions `json:"options"`
	Selected validation.FilterQuery `json:"selected"`
}

// SummaryResponse is the KPI block of the filtered view.
type SummaryResponse struct {
	services.Summary
	Filters validation.FilterQuery `json:"filters"`
}

// Upload handles POST /api/upload. The workbook is read from the multipart
// field "file".
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionID(ctx)

	if limit := h.files.MaxBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Pilih file Excel untuk diunggah"))
		return
	}
	defer file.Close()

	if err := h.files.ValidateUpload(header.Filename, header.Size); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "workbook upload received",
		slog.String("session_id", sessionID),
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size))

	result, err := h.service.Upload(ctx, sessionID, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// Records handles GET /api/records.
func (h *DatasetHandler) Records(w http.ResponseWriter, r *http.Request) {
	view, q, ok := h.view(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, RecordsResponse{
		Columns: view.Table.Columns,
		Rows:    nonNilRows(view.Table.Rows),
		Count:   view.Table.Len(),
		Total:   view.Of,
		Filters: q,
	})
}

// FilterOptions handles GET /api/filters.
func (h *DatasetHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	t, err := h.service.Current(ctx, middleware.SessionID(ctx))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, FiltersResponse{Options: services.Options(t, q.UP3), Selected: q})
}

// SaveFilters handles PUT /api/filters. The body is a JSON filter
// selection stored in the session; read endpoints use it when their query
// carries no filter.
func (h *DatasetHandler) SaveFilters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionID(ctx)

	var q validation.FilterQuery
	if err := render.DecodeJSON(r.Body, &q); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if !h.validator.Check(w, r, q) {
		return
	}
	q = clean(q)
	if err := h.service.SetFilters(ctx, sessionID, services.FiltersFromQuery(q)); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("Gagal menyimpan filter", err))
		return
	}

	t, err := h.service.Current(ctx, sessionID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, FiltersResponse{Options: services.Options(t, q.UP3), Selected: q})
}

// Summary handles GET /api/summary.
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	view, q, ok := h.view(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, SummaryResponse{Summary: services.Summarize(view.Table), Filters: q})
}

// Map handles GET /api/map.
func (h *DatasetHandler) Map(w http.ResponseWriter, r *http.Request) {
	view, _, ok := h.view(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, services.MapView(view.Table))
}

// Cluster handles GET /api/cluster?lat=&lon=.
func (h *DatasetHandler) Cluster(w http.ResponseWriter, r *http.Request) {
	var cq validation.ClusterQuery
	for _, p := range []struct {
		name string
		dst  **float64
	}{{"lat", &cq.Lat}, {"lon", &cq.Lon}} {
		raw := strings.TrimSpace(r.URL.Query().Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(p.name, p.name+" must be a number"))
			return
		}
		*p.dst = &v
	}
	if !h.validator.Check(w, r, cq) {
		return
	}

	view, _, ok := h.view(w, r)
	if !ok {
		return
	}
	items := services.Cluster(view.Table, *cq.Lat, *cq.Lon)
	render.JSON(w, r, map[string]interface{}{
		"lat":   *cq.Lat,
		"lon":   *cq.Lon,
		"count": len(items),
		"items": items,
	})
}

// Export handles GET /api/export and streams the filtered view as xlsx.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, _, ok := h.view(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := services.Export(&buf, view.Table); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewInternalError("Gagal membuat file export"))
		return
	}

	name := exporter.FileName(time.Now())
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("file", name),
			slog.String("error", err.Error()))
	}
}

// Reload handles POST /api/reload: the session's working copy is dropped
// and the durable dataset is read again.
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := h.service.Reload(ctx, middleware.SessionID(ctx))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"rows":    t.Len(),
		"columns": t.Columns,
	})
}

// view resolves the session's table and applies the active filters.
func (h *DatasetHandler) view(w http.ResponseWriter, r *http.Request) (services.View, validation.FilterQuery, bool) {
	ctx := r.Context()
	q, ok := h.query(w, r)
	if !ok {
		return services.View{}, q, false
	}
	t, err := h.service.Current(ctx, middleware.SessionID(ctx))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return services.View{}, q, false
	}
	return services.Apply(t, q), q, true
}

// query reads the filter selection from the URL. Without any filter
// parameter the selection stored in the session applies.
func (h *DatasetHandler) query(w http.ResponseWriter, r *http.Request) (validation.FilterQuery, bool) {
	values := r.URL.Query()
	_, hasUP3 := values[services.FilterUP3]
	_, hasULP := values[services.FilterULP]
	_, hasStatus := values[services.FilterStatus]

	var q validation.FilterQuery
	if hasUP3 || hasULP || hasStatus {
		q = validation.FilterQuery{
			UP3:    values[services.FilterUP3],
			ULP:    values[services.FilterULP],
			Status: values[services.FilterStatus],
		}
	} else {
		ctx := r.Context()
		stored, err := h.service.Filters(ctx, middleware.SessionID(ctx))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewStorageError("Gagal memuat filter", err))
			return q, false
		}
		q = services.QueryFromFilters(stored)
	}

	q = clean(q)
	if !h.validator.Check(w, r, q) {
		return q, false
	}
	return q, true
}

// clean trims values and drops empty ones.
func clean(q validation.FilterQuery) validation.FilterQuery {
	trim := func(in []string) []string {
		var out []string
		for _, v := range in {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return validation.FilterQuery{UP3: trim(q.UP3), ULP: trim(q.ULP), Status: trim(q.Status)}
}

func nonNilRows(rows [][]string) [][]string {
	if rows == nil {
		return [][]string{}
	}
	return rows
}

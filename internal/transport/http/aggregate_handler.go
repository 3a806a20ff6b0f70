package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"colsum/internal/aggregate"
	apierrors "colsum/internal/errors"
	"colsum/internal/services"
)

// AggregateHandler handles aggregation HTTP requests with RFC 7807
// compliant errors.
type AggregateHandler struct {
	service      *services.AggregationService
	fileService  *services.FileService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAggregateHandler creates a new aggregate handler
func NewAggregateHandler(service *services.AggregationService, fileService *services.FileService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AggregateHandler {
	return &AggregateHandler{
		service:      service,
		fileService:  fileService,
		logger:       logger.With(slog.String("component", "aggregate_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the aggregation routes
func (h *AggregateHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/aggregate", h.Aggregate)
	r.Get("/files", h.GetFiles)

	return r
}

// Aggregate handles POST /api/aggregate
func (h *AggregateHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req services.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.Aggregate(r.Context(), req)
	if err != nil {
		h.handleAggregateError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// handleAggregateError maps service errors to API errors before handing
// them to the RFC 7807 error handler.
func (h *AggregateHandler) handleAggregateError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "aggregation failed",
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path),
	)

	var colErr *aggregate.ColumnNotFoundError
	switch {
	case errors.Is(err, services.ErrFileNotFound):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound,
			"FILE_NOT_FOUND",
			"The requested file does not exist in the data directory",
		))
	case errors.Is(err, services.ErrInvalidPath):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"INVALID_PATH",
			"File name must not contain path separators",
		))
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"UNSUPPORTED_FORMAT",
			"Only CSV and Excel files can be aggregated",
		))
	case errors.As(err, &colErr):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusUnprocessableEntity,
			"COLUMN_NOT_FOUND",
			colErr.Error(),
			map[string]interface{}{
				"column": colErr.Column,
				"header": colErr.Header,
			},
		))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// GetFiles handles GET /api/files
func (h *AggregateHandler) GetFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.ListFiles(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list files",
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   files,
		"count":  len(files),
	})
}

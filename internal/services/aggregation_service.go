package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"colsum/internal/aggregate"
	apierrors "colsum/internal/errors"
	"colsum/internal/files"
)

// AggregateRequest describes one filtered column-sum invocation against
// a file inside the data directory.
type AggregateRequest struct {
	File         string `json:"file" validate:"required"`
	FilterColumn string `json:"filter_column" validate:"required"`
	FilterValue  string `json:"filter_value"`
	SumColumn    string `json:"sum_column" validate:"required"`
}

// AggregateResult is the outcome of a single aggregation, including the
// per-row skip diagnostics.
type AggregateResult struct {
	File         string                 `json:"file"`
	FilterColumn string                 `json:"filter_column"`
	FilterValue  string                 `json:"filter_value"`
	SumColumn    string                 `json:"sum_column"`
	Total        float64                `json:"total"`
	Rows         int                    `json:"rows"`
	Matched      int                    `json:"matched"`
	Skipped      []aggregate.SkippedRow `json:"skipped,omitempty"`
}

// AggregationService validates aggregation requests, resolves files
// against the data directory and runs the aggregator.
type AggregationService struct {
	aggregator *aggregate.Aggregator
	dataDir    string
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewAggregationService creates a new aggregation service rooted at
// dataDir.
func NewAggregationService(dataDir string, logger *slog.Logger) *AggregationService {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	// Use JSON tag names in validation error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &AggregationService{
		aggregator: aggregate.New(logger),
		dataDir:    dataDir,
		validate:   v,
		logger:     logger.With(slog.String("component", "aggregation_service")),
	}
}

// Aggregate runs a filtered column sum for the given request.
//
// Returned errors: a validation *AppError for malformed requests,
// ErrInvalidPath / ErrUnsupportedFormat / ErrFileNotFound for file
// resolution failures, and *aggregate.ColumnNotFoundError (wrapped)
// when a column is missing so callers can surface the header.
func (s *AggregationService) Aggregate(ctx context.Context, req AggregateRequest) (*AggregateResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	path, err := s.resolvePath(req.File)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "running aggregation",
		slog.String("file", req.File),
		slog.String("filter_column", req.FilterColumn),
		slog.String("filter_value", req.FilterValue),
		slog.String("sum_column", req.SumColumn))

	total, report, err := s.aggregator.FilteredSum(ctx, path, req.FilterColumn, req.FilterValue, req.SumColumn)
	if err != nil {
		var notFound *aggregate.ResourceNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", req.File, ErrFileNotFound)
		}
		return nil, err
	}

	return &AggregateResult{
		File:         req.File,
		FilterColumn: req.FilterColumn,
		FilterValue:  req.FilterValue,
		SumColumn:    req.SumColumn,
		Total:        total,
		Rows:         report.Rows,
		Matched:      report.Matched,
		Skipped:      report.Skipped,
	}, nil
}

// validateRequest converts validator failures into a single validation
// AppError carrying per-field messages.
func (s *AggregationService) validateRequest(req AggregateRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.NewAppValidationError(err.Error())
	}

	appErr := apierrors.NewAppValidationError("request validation failed")
	for _, fe := range verrs {
		appErr.WithContext(fe.Field(), fmt.Sprintf("failed %q validation", fe.Tag()))
	}
	return appErr
}

// resolvePath turns a request file name into an absolute path inside
// the data directory, rejecting traversal and unsupported formats.
// Files are served flat from the data directory, so any separator in
// the name is a traversal attempt.
func (s *AggregationService) resolvePath(name string) (string, error) {
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%s: %w", name, ErrInvalidPath)
	}

	if !files.IsAggregatable(name) {
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}

	return filepath.Join(s.dataDir, name), nil
}

// FileService lists aggregatable files available to the API.
type FileService struct {
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewFileService creates a new file service rooted at dataDir.
func NewFileService(dataDir string, logger *slog.Logger) *FileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{
		discovery: files.NewDiscovery(dataDir),
		logger:    logger.With(slog.String("component", "file_service")),
	}
}

// ListFiles returns the aggregatable files in the data directory,
// newest first. An empty directory yields an empty list, not an error.
func (s *FileService) ListFiles(ctx context.Context) ([]files.FileInfo, error) {
	found, err := s.discovery.FindTabularFiles(".")
	if err != nil {
		s.logger.ErrorContext(ctx, "file discovery failed",
			slog.String("error", err.Error()))
		return nil, apierrors.NewStorageError("failed to list data directory", err)
	}

	if found == nil {
		found = []files.FileInfo{}
	}
	return found, nil
}

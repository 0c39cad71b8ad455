package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "salespulse/internal/errors"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	mw "salespulse/internal/middleware"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

const (
	// MaxUploadFiles caps the number of sources in one upload.
	MaxUploadFiles = 20

	// multipartMemory is how much of a form is buffered in memory before
	// spilling to temp files.
	multipartMemory = 8 << 20

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// uploadForm is the validated shape of a multipart upload.
type uploadForm struct {
	Files  int  `json:"files" validate:"gte=1,lte=20"`
	Append bool `json:"append"`
}

// AnalysisHandler serves analysis passes over HTTP.
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	csv          *exporter.CSVWriter
	workbook     *exporter.WorkbookWriter
	validator    *mw.Validator
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates the analysis handler. maxUpload bounds the
// request body of an upload.
func NewAnalysisHandler(
	service AnalysisServiceInterface,
	csv *exporter.CSVWriter,
	workbook *exporter.WorkbookWriter,
	validator *mw.Validator,
	maxUpload int64,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:      service,
		csv:          csv,
		workbook:     workbook,
		validator:    validator,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes, mounted under /api/analysis.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(mw.MaxBodySize(h.maxUpload)).Post("/", h.Upload)
	r.Get("/", h.GetAnalysis)
	r.Get("/export.csv", h.ExportCSV)
	r.Get("/export.xlsx", h.ExportXLSX)

	return r
}

// Upload handles POST /api/analysis. The body is a multipart form with one
// or more files[] parts; append=true merges them into the current dataset.
// department and month query parameters filter the resulting pass.
func (h *AnalysisHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := h.validator.ParseAnalysisQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	filter, err := query.Filter()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("month", err.Error()))
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := uploadedFiles(r.MultipartForm)
	appendMode, _ := strconv.ParseBool(r.FormValue("append"))

	form := uploadForm{Files: len(headers), Append: appendMode}
	if err := h.validator.Struct(form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sources, err := readSources(headers)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "analysis upload received",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.Int("files", len(sources)),
		slog.Bool("append", appendMode))

	var result *domain.AnalysisResult
	if appendMode {
		result, err = h.service.Append(ctx, sources, filter)
	} else {
		result, err = h.service.Run(ctx, sources, filter)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// GetAnalysis handles GET /api/analysis. Without filter parameters it returns
// the current pass; otherwise the current dataset is re-run with the filter.
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	query, err := h.validator.ParseAnalysisQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, ok := h.resolve(w, r, query)
	if !ok {
		return
	}
	render.JSON(w, r, result)
}

// resolve returns the pass a read request asks for: the published pass when
// the query carries no filter, a filtered pass over the same dataset otherwise.
// Filtered passes are never published. On failure the error response is
// already written.
func (h *AnalysisHandler) resolve(w http.ResponseWriter, r *http.Request, query mw.AnalysisQuery) (*domain.AnalysisResult, bool) {
	if query.Department == "" && query.Month == "" {
		result, ok := h.service.Current()
		if !ok {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoDataset)
			return nil, false
		}
		return result, true
	}

	filter, err := query.Filter()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("month", err.Error()))
		return nil, false
	}

	result, err := h.service.Refilter(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return nil, false
	}
	return result, true
}

// ExportCSV handles GET /api/analysis/export.csv?view=...
func (h *AnalysisHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	query, err := h.validator.ParseAnalysisQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	view, err := exporter.ParseView(query.View)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("view", err.Error()))
		return
	}

	result, ok := h.resolve(w, r, query)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(fmt.Sprintf("sales-%s-%s.csv", view, shortID(result.ID))))
	if err := h.csv.WriteView(r.Context(), w, result, view); err != nil {
		// Headers are out; the client sees a truncated file.
		h.logger.ErrorContext(r.Context(), "CSV export failed",
			slog.String("view", string(view)),
			slog.String("error", err.Error()))
	}
}

// ExportXLSX handles GET /api/analysis/export.xlsx
func (h *AnalysisHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	query, err := h.validator.ParseAnalysisQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, ok := h.resolve(w, r, query)
	if !ok {
		return
	}

	f, err := h.workbook.Build(result)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to build workbook", err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", attachment(fmt.Sprintf("sales-analysis-%s.xlsx", shortID(result.ID))))
	if _, err := f.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "workbook export failed",
			slog.String("error", err.Error()))
	}
}

func (h *AnalysisHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoDataset):
		h.errorHandler.HandleError(w, r, apierrors.ErrNoDataset)
	case errors.Is(err, services.ErrNoSources):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("files", "at least one file is required"))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// uploadedFiles returns the file parts, accepting both files[] and files.
func uploadedFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	headers := append([]*multipart.FileHeader(nil), form.File["files[]"]...)
	return append(headers, form.File["files"]...)
}

func readSources(headers []*multipart.FileHeader) ([]dataprocessing.Source, error) {
	sources := make([]dataprocessing.Source, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, apierrors.NewStorageError("failed to open uploaded file", err).WithContext("source", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apierrors.NewStorageError("failed to read uploaded file", err).WithContext("source", fh.Filename)
		}
		sources = append(sources, dataprocessing.BytesSource(fh.Filename, data))
	}
	return sources, nil
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

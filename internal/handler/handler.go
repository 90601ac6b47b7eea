package handler

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"submissionmap/internal/errdefs"
	"submissionmap/internal/logging"
	"submissionmap/internal/model"
)

//go:embed templates/index.html
var templatesFS embed.FS

type DashboardService interface {
	LoadDataset(ctx context.Context, input *model.LoadDatasetInput) (*model.Dataset, error)
	CurrentDataset() (*model.Dataset, error)
	FilterByCategory(ds *model.Dataset, category string) []model.Record
	Timeline(records []model.Record) []model.TimelinePoint
	MapView(records []model.Record) *model.MapView
	MissingReport(ds *model.Dataset, records []model.Record) *model.MissingReport
	ExportMissingCSV(ds *model.Dataset, records []model.Record) ([]byte, error)
}

// ChartRenderer is the seam to the charting library; handlers never talk
// to it beyond this.
type ChartRenderer interface {
	TimelinePNG(points []model.TimelinePoint) ([]byte, error)
}

type DashboardHandler struct {
	service DashboardService
	chart   ChartRenderer
	page    *template.Template
}

func NewDashboardHandler(service DashboardService, chart ChartRenderer) *DashboardHandler {
	page := template.Must(template.ParseFS(templatesFS, "templates/index.html"))
	return &DashboardHandler{service: service, chart: chart, page: page}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/datasets", h.Upload)
	r.Get("/datasets/current/summary", h.Summary)
	r.Get("/datasets/current/timeline.png", h.Timeline)
	r.Get("/datasets/current/map", h.MapView)
	r.Get("/datasets/current/missing", h.Missing)
	r.Get("/datasets/current/missing.csv", h.MissingCSV)
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, nil); err != nil {
		if logger, ok := logging.GetFromContext(r.Context()); ok {
			logger.Error(r.Context(), "failed to render dashboard page", zap.Error(err))
		}
	}
}

func (h *DashboardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		if logger, ok := logging.GetFromContext(r.Context()); ok {
			logger.Error(r.Context(), "failed to read upload", zap.Error(err))
		}
		writeErrorJSON(w, http.StatusInternalServerError, "failed to read uploaded file")
		return
	}

	ds, err := h.service.LoadDataset(r.Context(), &model.LoadDatasetInput{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		if logger, ok := logging.GetFromContext(r.Context()); ok {
			logger.Error(r.Context(), "failed to load dataset", zap.Error(err))
		}
		writeErrorJSON(w, mapErr(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summaryOf(ds))
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.CurrentDataset()
	if err != nil {
		writeErrorJSON(w, mapErr(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summaryOf(ds))
}

func (h *DashboardHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	records, err := h.filteredRecords(r)
	if err != nil {
		writeErrorJSON(w, mapErr(err), err.Error())
		return
	}

	points := h.service.Timeline(records)
	if len(points) == 0 {
		// Every timestamp in the selection is null: the page shows the
		// informational empty-state instead of a chart.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	png, err := h.chart.TimelinePNG(points)
	if err != nil {
		if logger, ok := logging.GetFromContext(r.Context()); ok {
			logger.Error(r.Context(), "failed to render timeline", zap.Error(err))
		}
		writeErrorJSON(w, http.StatusInternalServerError, "failed to render timeline chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *DashboardHandler) MapView(w http.ResponseWriter, r *http.Request) {
	records, err := h.filteredRecords(r)
	if err != nil {
		writeErrorJSON(w, mapErr(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.service.MapView(records))
}

func (h *DashboardHandler) Missing(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.CurrentDataset()
	if err != nil {
		writeErrorJSON(w, mapErr(err), err.Error())
		return
	}
	records := h.service.FilterByCategory(ds, categoryParam(r))
	writeJSON(w, http.StatusOK, h.service.MissingReport(ds, records))
}

func (h *DashboardHandler) MissingCSV(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.CurrentDataset()
	if err != nil {
		writeErrorJSON(w, mapErr(err), err.Error())
		return
	}
	records := h.service.FilterByCategory(ds, categoryParam(r))
	data, err := h.service.ExportMissingCSV(ds, records)
	if err != nil {
		if logger, ok := logging.GetFromContext(r.Context()); ok {
			logger.Error(r.Context(), "failed to export missing records", zap.Error(err))
		}
		writeErrorJSON(w, http.StatusInternalServerError, "failed to export csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="missing_gps.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *DashboardHandler) filteredRecords(r *http.Request) ([]model.Record, error) {
	ds, err := h.service.CurrentDataset()
	if err != nil {
		return nil, err
	}
	return h.service.FilterByCategory(ds, categoryParam(r)), nil
}

func categoryParam(r *http.Request) string {
	category := r.URL.Query().Get("category")
	if category == "" {
		return model.AllCategories
	}
	return category
}

func summaryOf(ds *model.Dataset) *model.DatasetSummary {
	return &model.DatasetSummary{
		Key:        ds.Key,
		Filename:   ds.Filename,
		RowCount:   len(ds.Records),
		Categories: ds.Categories,
	}
}

func mapErr(err error) int {
	switch {
	case errors.Is(err, errdefs.ErrNoDataset):
		return http.StatusNotFound
	case errors.Is(err, errdefs.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, errdefs.ErrMissingColumn), errors.Is(err, errdefs.ErrEmptyFile), errors.Is(err, errdefs.ValidationErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	data, _ := json.Marshal(payload)
	_, _ = w.Write(data)
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp, _ := json.Marshal(map[string]string{"error": message})
	_, _ = w.Write(resp)
}

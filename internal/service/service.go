package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"submissionmap/internal/cache"
	"submissionmap/internal/errdefs"
	"submissionmap/internal/loader"
	"submissionmap/internal/logging"
	"submissionmap/internal/model"
)

// DashboardService owns the loader-filter-presenter pipeline. It keeps no
// state of its own; the injected cache is the only thing that survives
// between requests.
type DashboardService struct {
	datasets cache.DatasetCache
	schema   loader.Schema
	mapZoom  int
}

func NewDashboardService(datasets cache.DatasetCache, schema loader.Schema, mapZoom int) *DashboardService {
	return &DashboardService{datasets: datasets, schema: schema, mapZoom: mapZoom}
}

// LoadDataset parses an upload, or returns the cached dataset when the
// same bytes were uploaded before. The cache key is the content hash, so
// renaming a file does not force a reparse.
func (s *DashboardService) LoadDataset(ctx context.Context, input *model.LoadDatasetInput) (*model.Dataset, error) {
	sum := sha256.Sum256(input.Data)
	key := hex.EncodeToString(sum[:])

	if ds, ok := s.datasets.Get(key); ok {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Debug(ctx, "reusing cached dataset", zap.String("key", key))
		}
		return ds, nil
	}

	ds, err := loader.Parse(input.Filename, input.Data, s.schema)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", input.Filename, err)
	}
	ds.Key = key
	ds.UploadedAt = time.Now().UTC()
	s.datasets.Put(key, ds)

	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Info(ctx, "dataset loaded",
			zap.String("key", key),
			zap.String("filename", input.Filename),
			zap.Int("rows", len(ds.Records)),
			zap.Int("categories", len(ds.Categories)),
		)
	}
	return ds, nil
}

func (s *DashboardService) CurrentDataset() (*model.Dataset, error) {
	ds, ok := s.datasets.Current()
	if !ok {
		return nil, errdefs.ErrNoDataset
	}
	return ds, nil
}

// FilterByCategory returns the records matching the selection. The
// AllCategories sentinel returns the dataset's records unchanged; an
// unknown category yields an empty subset, never an error.
func (s *DashboardService) FilterByCategory(ds *model.Dataset, category string) []model.Record {
	if category == "" || category == model.AllCategories {
		return ds.Records
	}
	filtered := make([]model.Record, 0, len(ds.Records))
	for _, record := range ds.Records {
		if record.Category == category {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Timeline buckets records by calendar day (UTC), skipping rows without a
// parseable timestamp, and returns the counts in chronological order.
func (s *DashboardService) Timeline(records []model.Record) []model.TimelinePoint {
	counts := make(map[time.Time]int)
	for _, record := range records {
		if record.Timestamp == nil {
			continue
		}
		ts := record.Timestamp.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		counts[day]++
	}

	points := make([]model.TimelinePoint, 0, len(counts))
	for day, count := range counts {
		points = append(points, model.TimelinePoint{Day: day, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })
	return points
}

// MapView collects the rows with resolved coordinates and centers the map
// on their arithmetic mean at a fixed zoom. Empty is set when nothing is
// plottable so the page can show the empty-state message instead.
func (s *DashboardService) MapView(records []model.Record) *model.MapView {
	view := &model.MapView{Zoom: s.mapZoom}
	var sumLat, sumLon float64
	for _, record := range records {
		if record.Latitude == nil || record.Longitude == nil {
			continue
		}
		view.Points = append(view.Points, model.MapPoint{
			ID:        record.ID,
			Category:  record.Category,
			Timestamp: formatTimestamp(record.Timestamp),
			Latitude:  *record.Latitude,
			Longitude: *record.Longitude,
		})
		sumLat += *record.Latitude
		sumLon += *record.Longitude
	}

	if len(view.Points) == 0 {
		view.Empty = true
		return view
	}
	view.CenterLat = sumLat / float64(len(view.Points))
	view.CenterLon = sumLon / float64(len(view.Points))
	return view
}

// MissingReport lists the rows whose coordinates could not be resolved,
// with the original cell values so the table looks like the uploaded file.
func (s *DashboardService) MissingReport(ds *model.Dataset, records []model.Record) *model.MissingReport {
	report := &model.MissingReport{Columns: ds.Columns}
	for _, record := range records {
		if record.Latitude != nil && record.Longitude != nil {
			continue
		}
		row := make([]string, len(ds.Columns))
		for i, column := range ds.Columns {
			row[i] = record.Fields[column]
		}
		report.Rows = append(report.Rows, row)
	}
	report.Count = len(report.Rows)
	return report
}

// ExportMissingCSV renders the missing-coordinates report as CSV for
// download.
func (s *DashboardService) ExportMissingCSV(ds *model.Dataset, records []model.Record) ([]byte, error) {
	report := s.MissingReport(ds, records)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(report.Columns); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range report.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format("2006-01-02 15:04:05")
}

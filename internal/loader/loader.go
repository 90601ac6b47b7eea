package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"submissionmap/internal/errdefs"
	"submissionmap/internal/model"
)

// Schema names the columns the loader needs. Category and Timestamp are
// required; the coordinate pairs and the ID column are optional in the
// uploaded file.
type Schema struct {
	Category     string
	Timestamp    string
	ID           string
	PrimaryLat   string
	PrimaryLon   string
	SecondaryLat string
	SecondaryLon string
}

const maxSheetRows = 100000

// Parse turns an uploaded file into a dataset. The format is chosen by the
// filename extension. A missing category or timestamp column fails the
// whole load; bad cells inside a row never do.
func Parse(filename string, data []byte, schema Schema) (*model.Dataset, error) {
	rows, err := readRows(filename, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, errdefs.ErrEmptyFile)
	}

	header := make([]string, len(rows[0]))
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		header[i] = name
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	categoryIdx, ok := index[schema.Category]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", schema.Category, errdefs.ErrMissingColumn)
	}
	timestampIdx, ok := index[schema.Timestamp]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", schema.Timestamp, errdefs.ErrMissingColumn)
	}

	idIdx := columnIndex(index, schema.ID)
	primaryLatIdx := columnIndex(index, schema.PrimaryLat)
	primaryLonIdx := columnIndex(index, schema.PrimaryLon)
	secondaryLatIdx := columnIndex(index, schema.SecondaryLat)
	secondaryLonIdx := columnIndex(index, schema.SecondaryLon)

	records := make([]model.Record, 0, len(rows)-1)
	categorySet := make(map[string]struct{})
	for _, row := range rows[1:] {
		fields := make(map[string]string, len(header))
		for i, name := range header {
			fields[name] = cellValue(row, i)
		}

		lat, lon := ResolveCoordinates(
			parseFloatCell(cellValue(row, primaryLatIdx)),
			parseFloatCell(cellValue(row, primaryLonIdx)),
			parseFloatCell(cellValue(row, secondaryLatIdx)),
			parseFloatCell(cellValue(row, secondaryLonIdx)),
		)

		record := model.Record{
			ID:        cellValue(row, idIdx),
			Category:  cellValue(row, categoryIdx),
			Timestamp: parseTimestamp(cellValue(row, timestampIdx)),
			Latitude:  lat,
			Longitude: lon,
			Fields:    fields,
		}
		records = append(records, record)
		if record.Category != "" {
			categorySet[record.Category] = struct{}{}
		}
	}

	categories := make([]string, 0, len(categorySet))
	for category := range categorySet {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	return &model.Dataset{
		Filename:   filename,
		Columns:    header,
		Records:    records,
		Categories: categories,
	}, nil
}

// readRows extracts raw cells from CSV, XLSX or legacy XLS content. XLSX
// and XLS reading works off the first sheet only, matching what the
// dashboard expects from survey exports.
func readRows(filename string, data []byte) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(data))
		r.TrimLeadingSpace = true
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		return rows, nil
	case ".xlsx":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening xlsx: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("xlsx: %w", errdefs.ErrEmptyFile)
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("reading xlsx rows: %w", err)
		}
		return rows, nil
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("opening xls: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("xls: %w", errdefs.ErrEmptyFile)
		}
		return workbook.ReadAllCells(maxSheetRows), nil
	default:
		return nil, fmt.Errorf("extension %q: %w", ext, errdefs.ErrUnsupportedFormat)
	}
}

func columnIndex(index map[string]int, name string) int {
	if name == "" {
		return -1
	}
	if i, ok := index[name]; ok {
		return i
	}
	return -1
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloatCell(value string) *float64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

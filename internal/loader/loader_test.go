package loader

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"submissionmap/internal/errdefs"
)

func testSchema() Schema {
	return Schema{
		Category:     "Province",
		Timestamp:    "SubmissionDate",
		ID:           "KEY",
		PrimaryLat:   "Geopoint1-Latitude",
		PrimaryLon:   "Geopoint1-Longitude",
		SecondaryLat: "geopoint-Latitude",
		SecondaryLon: "geopoint-Longitude",
	}
}

const sampleCSV = `KEY,Province,SubmissionDate,Geopoint1-Latitude,Geopoint1-Longitude,geopoint-Latitude,geopoint-Longitude
k1,North,2024-01-01,1.0,2.0,8.0,9.0
k2,South,2024-01-02,,,3.5,4.5
k3,North,not-a-date,,,,7.0
`

func TestParse_CSV(t *testing.T) {
	ds, err := Parse("survey.csv", []byte(sampleCSV), testSchema())
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)

	assert.Equal(t, "survey.csv", ds.Filename)
	assert.Equal(t, []string{"North", "South"}, ds.Categories)

	first := ds.Records[0]
	assert.Equal(t, "k1", first.ID)
	assert.Equal(t, "North", first.Category)
	require.NotNil(t, first.Timestamp)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *first.Timestamp)
	// Primary pair wins even though the secondary pair is fully populated.
	require.NotNil(t, first.Latitude)
	require.NotNil(t, first.Longitude)
	assert.Equal(t, 1.0, *first.Latitude)
	assert.Equal(t, 2.0, *first.Longitude)

	second := ds.Records[1]
	require.NotNil(t, second.Latitude)
	require.NotNil(t, second.Longitude)
	assert.Equal(t, 3.5, *second.Latitude)
	assert.Equal(t, 4.5, *second.Longitude)

	third := ds.Records[2]
	assert.Nil(t, third.Timestamp, "unparseable timestamps become nil, not errors")
	assert.Nil(t, third.Latitude)
	assert.Nil(t, third.Longitude)
	assert.Equal(t, "7.0", third.Fields["geopoint-Longitude"], "original cells survive for the report")
}

func TestParse_MissingCategoryColumn(t *testing.T) {
	withoutCategory := "KEY,SubmissionDate\nk1,2024-01-01\n"
	ds, err := Parse("survey.csv", []byte(withoutCategory), testSchema())
	assert.Nil(t, ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrMissingColumn))

	// The same file with the category column added loads fine.
	withCategory := "KEY,Province,SubmissionDate\nk1,North,2024-01-01\n"
	ds, err = Parse("survey.csv", []byte(withCategory), testSchema())
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
}

func TestParse_MissingTimestampColumn(t *testing.T) {
	data := "KEY,Province\nk1,North\n"
	ds, err := Parse("survey.csv", []byte(data), testSchema())
	assert.Nil(t, ds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrMissingColumn))
}

func TestParse_OptionalCoordinateColumnsAbsent(t *testing.T) {
	data := "KEY,Province,SubmissionDate\nk1,North,2024-01-01\n"
	ds, err := Parse("survey.csv", []byte(data), testSchema())
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Nil(t, ds.Records[0].Latitude)
	assert.Nil(t, ds.Records[0].Longitude)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse("survey.pdf", []byte("whatever"), testSchema())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrUnsupportedFormat))
}

func TestParse_EmptyCSV(t *testing.T) {
	_, err := Parse("survey.csv", []byte(""), testSchema())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrEmptyFile))
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{
		"KEY", "Province", "SubmissionDate", "Geopoint1-Latitude", "Geopoint1-Longitude",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{
		"k1", "East", "2024-03-05", 10.5, 20.25,
	}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	ds, err := Parse("survey.xlsx", buf.Bytes(), testSchema())
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)

	record := ds.Records[0]
	assert.Equal(t, "East", record.Category)
	require.NotNil(t, record.Latitude)
	require.NotNil(t, record.Longitude)
	assert.Equal(t, 10.5, *record.Latitude)
	assert.Equal(t, 20.25, *record.Longitude)
	require.NotNil(t, record.Timestamp)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *record.Timestamp)
}

func TestParse_ShortRows(t *testing.T) {
	// Rows narrower than the header are padded with empty cells, not errors.
	data := "KEY,Province,SubmissionDate,Geopoint1-Latitude,Geopoint1-Longitude\nk1,West\n"
	ds, err := Parse("survey.csv", []byte(data), testSchema())
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "West", ds.Records[0].Category)
	assert.Nil(t, ds.Records[0].Timestamp)
	assert.Nil(t, ds.Records[0].Latitude)
}

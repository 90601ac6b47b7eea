// Package render draws the dashboard's server-side artifacts. The charting
// library stays behind the handler's ChartRenderer seam.
package render

import (
	"bytes"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"submissionmap/internal/model"
)

// TimelineChart renders the submissions-per-day line chart with go-chart.
type TimelineChart struct {
	Width  int
	Height int
}

func NewTimelineChart() *TimelineChart {
	return &TimelineChart{Width: 900, Height: 320}
}

func (c *TimelineChart) TimelinePNG(points []model.TimelinePoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no timeline points to render")
	}

	times := make([]time.Time, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		times[i] = p.Day
		values[i] = float64(p.Count)
	}
	// go-chart needs at least two X values; a single bucket is padded with
	// a duplicate a day later.
	if len(times) == 1 {
		times = append(times, times[0].Add(24*time.Hour))
		values = append(values, values[0])
	}

	lineColor := drawing.ColorFromHex("1f77b4")
	graph := chart.Chart{
		Width:  c.Width,
		Height: c.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Submissions",
				XValues: times,
				YValues: values,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2.0,
					DotColor:    lineColor,
					DotWidth:    3.0,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering timeline chart: %w", err)
	}
	return buf.Bytes(), nil
}

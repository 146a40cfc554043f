package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"

	"weather-forecaster/metrics"
	"weather-forecaster/models"
)

const (
	// DefaultWidth and DefaultHeight give an 11.5x5.5 inch figure at 100 DPI
	DefaultWidth  = 1150
	DefaultHeight = 550

	temperatureAxisName = "Temperature (°C)"
	windAxisName        = "Wind Speed (m/s)"
)

// ErrEmptySummary is returned when there are no days to plot
var ErrEmptySummary = errors.New("no forecast days to plot")

var (
	windBarColor = drawing.ColorFromHex("808080").WithAlpha(102)
	gridColor    = drawing.ColorFromHex("b0b0b0").WithAlpha(128)
)

// ChartRenderer writes one dual-axis forecast chart per city
type ChartRenderer struct {
	dir    string
	width  int
	height int
	logger *zap.Logger
}

// NewChartRenderer creates a renderer writing PNG files into dir.
// Non-positive sizes fall back to the defaults.
func NewChartRenderer(dir string, width, height int, logger *zap.Logger) *ChartRenderer {
	if dir == "" {
		dir = "."
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartRenderer{
		dir:    dir,
		width:  width,
		height: height,
		logger: logger,
	}
}

// ChartPath returns the file a city's chart is written to
func (r *ChartRenderer) ChartPath(city string) string {
	return filepath.Join(r.dir, city+"_forecast.png")
}

// Render draws the summary and writes it to <dir>/<city>_forecast.png,
// replacing any previous file. It returns the path written.
func (r *ChartRenderer) Render(s models.DailySummary) (string, error) {
	if s.Len() == 0 {
		return "", ErrEmptySummary
	}

	graph := r.build(s)
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	path := r.ChartPath(s.City)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write chart file: %w", err)
	}

	metrics.ChartsRenderedTotal.Inc()
	r.logger.Debug("Chart written", zap.String("city", s.City), zap.String("path", path), zap.Int("days", s.Len()))
	return path, nil
}

func (r *ChartRenderer) build(s models.DailySummary) chart.Chart {
	n := s.Len()
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	avg, high, low, wind := s.AvgTemps(), s.MaxTemps(), s.MinTemps(), s.AvgWinds()

	graph := chart.Chart{
		Title: fmt.Sprintf("5-Day Temperature & Wind Forecast for %s", s.City),
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Style: chart.Shown(),
			Ticks: dayTicks(s.Labels()),
			GridMajorStyle: chart.Style{
				StrokeColor:     gridColor,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		},
		YAxis: chart.YAxis{
			Name:      temperatureAxisName,
			NameStyle: chart.Shown(),
			Style:     chart.Shown(),
			Range:     temperatureRange(high, low),
			GridMajorStyle: chart.Style{
				StrokeColor:     gridColor,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		},
		YAxisSecondary: chart.YAxis{
			Name:      windAxisName,
			NameStyle: chart.Shown(),
			Style:     chart.Shown(),
			Range:     windRange(wind),
		},
		Series: []chart.Series{
			chart.HistogramSeries{
				Name:  "Wind Speed",
				YAxis: chart.YAxisSecondary,
				Style: chart.Style{
					StrokeColor: windBarColor,
					FillColor:   windBarColor,
				},
				InnerSeries: chart.ContinuousSeries{XValues: xs, YValues: wind},
			},
			lineSeries("Avg Temp", chart.ColorBlue, xs, avg),
			lineSeries("Max Temp", chart.ColorRed, xs, high),
			lineSeries("Min Temp", chart.ColorGreen, xs, low),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func lineSeries(name string, color drawing.Color, xs, ys []float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotColor:    color,
			DotWidth:    4,
		},
		XValues: xs,
		YValues: ys,
	}
}

// dayTicks labels each day index and pads half a slot either side so the
// first and last bars are not clipped.
func dayTicks(labels []string) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, l := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	return append(ticks, chart.Tick{Value: float64(len(labels)) - 0.5})
}

func temperatureRange(high, low []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range low {
		lo = math.Min(lo, v)
	}
	for _, v := range high {
		hi = math.Max(hi, v)
	}
	pad := math.Max((hi-lo)*0.1, 1)
	return &chart.ContinuousRange{Min: math.Floor(lo - pad), Max: math.Ceil(hi + pad)}
}

func windRange(wind []float64) *chart.ContinuousRange {
	hi := 0.0
	for _, v := range wind {
		hi = math.Max(hi, v)
	}
	return &chart.ContinuousRange{Min: 0, Max: math.Max(math.Ceil(hi*1.2), 1)}
}

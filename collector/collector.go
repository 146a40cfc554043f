package collector

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"weather-forecaster/datasource"
	"weather-forecaster/metrics"
	"weather-forecaster/models"
	"weather-forecaster/render"
)

// Status is the result class of processing one city
type Status string

const (
	// StatusOK means the table was printed and the chart written
	StatusOK Status = "ok"
	// StatusAPIError means the API answered with a non-200 code
	StatusAPIError Status = "api_error"
	// StatusFailed means fetching, aggregating or rendering failed
	StatusFailed Status = "failed"
)

// Outcome is the per-city result of a run
type Outcome struct {
	City      string
	Status    Status
	Message   string // API message for StatusAPIError
	Err       error  // cause for StatusFailed
	Summary   models.DailySummary
	ChartPath string
}

// Summarizer reduces forecast samples to per-day statistics
type Summarizer interface {
	Daily(city string, samples []models.Sample) models.DailySummary
}

// ChartWriter renders a daily summary to an image file
type ChartWriter interface {
	Render(s models.DailySummary) (string, error)
}

// Collector runs the fetch, aggregate, print and plot steps for each city in turn
type Collector struct {
	source     datasource.ForecastSource
	summarizer Summarizer
	charts     ChartWriter
	out        io.Writer
	logger     *zap.Logger
}

// New creates a collector writing tables and error lines to out
func New(source datasource.ForecastSource, summarizer Summarizer, charts ChartWriter, out io.Writer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		source:     source,
		summarizer: summarizer,
		charts:     charts,
		out:        out,
		logger:     logger,
	}
}

// Run processes every city in order. A failing city never stops the ones after it.
func (c *Collector) Run(ctx context.Context, cities []string) []Outcome {
	outcomes := make([]Outcome, 0, len(cities))
	for _, city := range cities {
		outcomes = append(outcomes, c.Process(ctx, city))
	}
	return outcomes
}

// Process fetches and reports the forecast of one city
func (c *Collector) Process(ctx context.Context, city string) Outcome {
	outcome := c.process(ctx, city)

	switch outcome.Status {
	case StatusAPIError:
		fmt.Fprintf(c.out, "Error fetching data for %s: %s\n", city, outcome.Message)
		c.logger.Warn("Forecast API returned an error", zap.String("city", city), zap.String("message", outcome.Message))
	case StatusFailed:
		fmt.Fprintf(c.out, "Error processing %s: %v\n", city, outcome.Err)
		c.logger.Warn("Failed to process city", zap.String("city", city), zap.Error(outcome.Err))
	default:
		c.logger.Info("City processed", zap.String("city", city), zap.String("chart", outcome.ChartPath), zap.Int("days", outcome.Summary.Len()))
	}

	metrics.RecordCityOutcome(string(outcome.Status))
	return outcome
}

func (c *Collector) process(ctx context.Context, city string) (outcome Outcome) {
	outcome.City = city

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = StatusFailed
			outcome.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	resp, err := c.source.FetchForecast(ctx, city)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("error fetching from %s: %w", c.source.Name(), err)
		return outcome
	}

	if !resp.OK() {
		outcome.Status = StatusAPIError
		outcome.Message = resp.ErrorMessage()
		return outcome
	}

	summary := c.summarizer.Daily(city, resp.List)
	outcome.Summary = summary

	if err := render.WriteTable(c.out, summary); err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	path, err := c.charts.Render(summary)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = StatusOK
	outcome.ChartPath = path
	return outcome
}

// Counts tallies outcomes by status
func Counts(outcomes []Outcome) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}

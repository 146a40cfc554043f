package collector

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"

	"weather-forecaster/aggregate"
	"weather-forecaster/metrics"
	"weather-forecaster/models"
)

type fakeSource struct {
	responses map[string]models.ForecastResponse
	errs      map[string]error
	calls     []string
}

func (f *fakeSource) FetchForecast(ctx context.Context, city string) (models.ForecastResponse, error) {
	f.calls = append(f.calls, city)
	if err, ok := f.errs[city]; ok {
		return models.ForecastResponse{}, err
	}
	return f.responses[city], nil
}

func (f *fakeSource) Name() string {
	return "Fake"
}

type recordingSummarizer struct {
	inner *aggregate.Aggregator
	calls int
	panic bool
}

func (r *recordingSummarizer) Daily(city string, samples []models.Sample) models.DailySummary {
	r.calls++
	if r.panic {
		panic("bad sample")
	}
	return r.inner.Daily(city, samples)
}

type fakeCharts struct {
	rendered []string
	err      error
}

func (f *fakeCharts) Render(s models.DailySummary) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rendered = append(f.rendered, s.City)
	return s.City + "_forecast.png", nil
}

func okResponse() models.ForecastResponse {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).Unix()
	return models.ForecastResponse{
		Cod: models.StatusOK,
		List: []models.Sample{
			{Dt: base, Main: models.Main{Temp: 10, TempMax: 12, TempMin: 8}, Wind: models.Wind{Speed: 2}},
			{Dt: base + 3*3600, Main: models.Main{Temp: 14, TempMax: 16, TempMin: 9}, Wind: models.Wind{Speed: 4}},
		},
	}
}

func newTestCollector(src *fakeSource, charts *fakeCharts) (*Collector, *recordingSummarizer, *bytes.Buffer) {
	summarizer := &recordingSummarizer{inner: aggregate.New(time.UTC, 5)}
	out := &bytes.Buffer{}
	return New(src, summarizer, charts, out, nil), summarizer, out
}

func TestProcess(t *testing.T) {
	Convey("Given a collector with fake dependencies", t, func() {
		src := &fakeSource{
			responses: map[string]models.ForecastResponse{
				"London":   okResponse(),
				"Atlantis": {Cod: "404", Message: "city not found"},
				"Nowhere":  {Cod: "500"},
			},
			errs: map[string]error{"Paris": errors.New("connection refused")},
		}
		charts := &fakeCharts{}
		c, summarizer, out := newTestCollector(src, charts)

		Convey("A successful city prints the table and writes the chart", func() {
			before := testutil.ToFloat64(metrics.CityOutcomesTotal.WithLabelValues(string(StatusOK)))

			o := c.Process(context.Background(), "London")
			So(o.Status, ShouldEqual, StatusOK)
			So(o.Err, ShouldBeNil)
			So(o.ChartPath, ShouldEqual, "London_forecast.png")
			So(o.Summary.Days, ShouldHaveLength, 1)
			So(o.Summary.Days[0].AvgTemp, ShouldEqual, 12)
			So(out.String(), ShouldContainSubstring, "Average Temperature Forecast (London):")
			So(out.String(), ShouldContainSubstring, "01/01/2024   12.0            3.0")
			So(charts.rendered, ShouldResemble, []string{"London"})
			So(testutil.ToFloat64(metrics.CityOutcomesTotal.WithLabelValues(string(StatusOK))), ShouldEqual, before+1)
		})

		Convey("An API error is reported without aggregating", func() {
			o := c.Process(context.Background(), "Atlantis")
			So(o.Status, ShouldEqual, StatusAPIError)
			So(o.Message, ShouldEqual, "city not found")
			So(out.String(), ShouldEqual, "Error fetching data for Atlantis: city not found\n")
			So(summarizer.calls, ShouldEqual, 0)
			So(charts.rendered, ShouldBeEmpty)
		})

		Convey("An API error without a message is an unknown error", func() {
			o := c.Process(context.Background(), "Nowhere")
			So(o.Status, ShouldEqual, StatusAPIError)
			So(out.String(), ShouldEqual, "Error fetching data for Nowhere: Unknown error\n")
		})

		Convey("A fetch failure is a processing error", func() {
			o := c.Process(context.Background(), "Paris")
			So(o.Status, ShouldEqual, StatusFailed)
			So(o.Err.Error(), ShouldContainSubstring, "connection refused")
			So(out.String(), ShouldStartWith, "Error processing Paris: ")
			So(summarizer.calls, ShouldEqual, 0)
		})

		Convey("A render failure is a processing error after the table", func() {
			charts.err = errors.New("disk full")
			o := c.Process(context.Background(), "London")
			So(o.Status, ShouldEqual, StatusFailed)
			So(o.Err.Error(), ShouldEqual, "disk full")
			So(out.String(), ShouldContainSubstring, "Average Temperature Forecast (London):")
			So(out.String(), ShouldEndWith, "Error processing London: disk full\n")
		})

		Convey("A panic while aggregating is recovered", func() {
			summarizer.panic = true
			o := c.Process(context.Background(), "London")
			So(o.Status, ShouldEqual, StatusFailed)
			So(o.Err.Error(), ShouldContainSubstring, "bad sample")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("One failing city does not stop the others", t, func() {
		src := &fakeSource{
			responses: map[string]models.ForecastResponse{
				"London": okResponse(),
				"Oslo":   okResponse(),
			},
			errs: map[string]error{"Paris": errors.New("timeout")},
		}
		charts := &fakeCharts{}
		c, _, _ := newTestCollector(src, charts)

		outcomes := c.Run(context.Background(), []string{"London", "Paris", "Oslo"})
		So(outcomes, ShouldHaveLength, 3)
		So(src.calls, ShouldResemble, []string{"London", "Paris", "Oslo"})
		So(outcomes[0].Status, ShouldEqual, StatusOK)
		So(outcomes[1].Status, ShouldEqual, StatusFailed)
		So(outcomes[2].Status, ShouldEqual, StatusOK)
		So(charts.rendered, ShouldResemble, []string{"London", "Oslo"})

		counts := Counts(outcomes)
		So(counts[StatusOK], ShouldEqual, 2)
		So(counts[StatusFailed], ShouldEqual, 1)
		So(counts[StatusAPIError], ShouldEqual, 0)
	})

	Convey("No cities yields no outcomes", t, func() {
		c, _, out := newTestCollector(&fakeSource{}, &fakeCharts{})
		So(c.Run(context.Background(), nil), ShouldBeEmpty)
		So(out.Len(), ShouldEqual, 0)
	})
}

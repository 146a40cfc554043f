package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecordForecastRequest(t *testing.T) {
	Convey("Requests are counted by status", t, func() {
		success := testutil.ToFloat64(ForecastRequestsTotal.WithLabelValues("success"))
		failure := testutil.ToFloat64(ForecastRequestsTotal.WithLabelValues("error"))

		RecordForecastRequest(50*time.Millisecond, nil)
		RecordForecastRequest(10*time.Millisecond, errors.New("boom"))
		RecordForecastRequest(20*time.Millisecond, errors.New("boom"))

		So(testutil.ToFloat64(ForecastRequestsTotal.WithLabelValues("success")), ShouldEqual, success+1)
		So(testutil.ToFloat64(ForecastRequestsTotal.WithLabelValues("error")), ShouldEqual, failure+2)
	})
}

func TestRecordCacheLookup(t *testing.T) {
	Convey("Hits and misses are separate series", t, func() {
		hits := testutil.ToFloat64(ForecastCacheLookupsTotal.WithLabelValues("hit"))
		misses := testutil.ToFloat64(ForecastCacheLookupsTotal.WithLabelValues("miss"))

		RecordCacheLookup(true)
		RecordCacheLookup(false)
		RecordCacheLookup(false)

		So(testutil.ToFloat64(ForecastCacheLookupsTotal.WithLabelValues("hit")), ShouldEqual, hits+1)
		So(testutil.ToFloat64(ForecastCacheLookupsTotal.WithLabelValues("miss")), ShouldEqual, misses+2)
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Registered metrics are written to disk", t, func() {
		RecordCityOutcome("ok")
		ChartsRenderedTotal.Inc()

		path := filepath.Join(t.TempDir(), "forecast.prom")
		So(WriteTextfile(path), ShouldBeNil)

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, "forecast_city_outcomes_total")
		So(string(data), ShouldContainSubstring, "forecast_charts_rendered_total")
	})

	Convey("Unwritable path", t, func() {
		err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "forecast.prom"))
		So(err, ShouldNotBeNil)
	})
}

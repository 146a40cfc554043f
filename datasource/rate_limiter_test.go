package datasource

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"weather-forecaster/models"
)

type countingSource struct {
	calls int
}

func (c *countingSource) FetchForecast(ctx context.Context, city string) (models.ForecastResponse, error) {
	c.calls++
	return models.ForecastResponse{Cod: models.StatusOK}, nil
}

func (c *countingSource) Name() string {
	return "Counting"
}

func TestRateLimitedForecastSource(t *testing.T) {
	Convey("Name marks the wrapper", t, func() {
		r := NewRateLimitedForecastSource(&countingSource{}, 1, 1)
		So(r.Name(), ShouldEqual, "Counting [Rate Limited]")
	})

	Convey("Requests within the burst are forwarded", t, func() {
		src := &countingSource{}
		r := NewRateLimitedForecastSource(src, 1, 3)
		for i := 0; i < 3; i++ {
			resp, err := r.FetchForecast(context.Background(), "Paris")
			So(err, ShouldBeNil)
			So(resp.OK(), ShouldBeTrue)
		}
		So(src.calls, ShouldEqual, 3)
	})

	Convey("Cancelled context stops the wait", t, func() {
		src := &countingSource{}
		r := NewRateLimitedForecastSource(src, 0.001, 1)
		_, err := r.FetchForecast(context.Background(), "Paris")
		So(err, ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = r.FetchForecast(ctx, "Paris")
		So(err, ShouldNotBeNil)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
		So(src.calls, ShouldEqual, 1)
	})
}

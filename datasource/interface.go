package datasource

import (
	"context"

	"weather-forecaster/models"
)

// ForecastSource defines the interface for services that fetch the raw
// 5 day / 3 hour forecast of a city
type ForecastSource interface {
	// FetchForecast fetches the forecast body for a city. API level failures
	// are reported through the response status, not the error.
	FetchForecast(ctx context.Context, city string) (models.ForecastResponse, error)

	// Name returns the source's name
	Name() string
}

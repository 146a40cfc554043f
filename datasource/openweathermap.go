package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"weather-forecaster/metrics"
	"weather-forecaster/models"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 API root
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// DefaultUnits requests Celsius and m/s
	DefaultUnits = "metric"

	// DefaultTimeout bounds a single forecast request
	DefaultTimeout = 10 * time.Second
)

// OpenWeatherMapSource fetches forecasts from OpenWeatherMap
type OpenWeatherMapSource struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures an OpenWeatherMapSource
type Option func(*OpenWeatherMapSource)

// WithBaseURL overrides the API root, mostly for tests
func WithBaseURL(baseURL string) Option {
	return func(p *OpenWeatherMapSource) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithUnits sets the unit system sent with each request
func WithUnits(units string) Option {
	return func(p *OpenWeatherMapSource) {
		p.units = units
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(p *OpenWeatherMapSource) {
		p.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) Option {
	return func(p *OpenWeatherMapSource) {
		p.logger = logger
	}
}

// NewOpenWeatherMapSource creates a new OpenWeatherMap forecast source
func NewOpenWeatherMapSource(apiKey string, opts ...Option) *OpenWeatherMapSource {
	p := &OpenWeatherMapSource{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		units:   DefaultUnits,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapSource) Name() string {
	return "OpenWeatherMap"
}

// BuildURL returns the forecast request URL for a city
func (p *OpenWeatherMapSource) BuildURL(city string) string {
	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", p.apiKey)
	params.Add("units", p.units)
	return fmt.Sprintf("%s/forecast?%s", p.baseURL, params.Encode())
}

// FetchForecast fetches the 5 day / 3 hour forecast for a city. The body is
// decoded whatever the HTTP status, callers check ForecastResponse.OK.
func (p *OpenWeatherMapSource) FetchForecast(ctx context.Context, city string) (resp models.ForecastResponse, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordForecastRequest(time.Since(start), err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BuildURL(city), nil)
	if err != nil {
		return models.ForecastResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	p.logger.Debug("Requesting forecast",
		zap.String("city", city),
		zap.String("endpoint", p.baseURL+"/forecast"))

	httpResp, err := p.httpClient.Do(req)
	if err != nil {
		return models.ForecastResponse{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return models.ForecastResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return models.ForecastResponse{}, fmt.Errorf("failed to parse response (status %d): %w", httpResp.StatusCode, err)
	}

	p.logger.Debug("Received forecast",
		zap.String("city", city),
		zap.Int("httpStatus", httpResp.StatusCode),
		zap.String("cod", string(resp.Cod)),
		zap.Int("samples", len(resp.List)),
		zap.Duration("elapsed", time.Since(start)))

	return resp, nil
}

// Ensure OpenWeatherMapSource implements ForecastSource
var _ ForecastSource = (*OpenWeatherMapSource)(nil)

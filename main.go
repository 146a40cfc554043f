package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"weather-forecaster/aggregate"
	"weather-forecaster/cache"
	"weather-forecaster/collector"
	"weather-forecaster/config"
	"weather-forecaster/datasource"
	"weather-forecaster/metrics"
	"weather-forecaster/render"
)

// cityList collects city names from a repeatable, space separated flag
type cityList []string

func (c *cityList) String() string {
	return strings.Join(*c, " ")
}

func (c *cityList) Set(value string) error {
	*c = append(*c, strings.Fields(value)...)
	return nil
}

type options struct {
	cities      cityList
	envFile     string
	configFile  string
	outDir      string
	metricsFile string
	rateLimit   bool
	verbose     bool
}

func parseFlags(args []string, errOut io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("weather-forecaster", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Var(&opts.cities, "cities", "Space separated list of cities (repeatable)")
	fs.StringVar(&opts.envFile, "envfile", config.DefaultEnvFile, "Path to the env file holding "+config.APIKeyEnv)
	fs.StringVar(&opts.configFile, "config", "", "Path to an optional YAML configuration file")
	fs.StringVar(&opts.outDir, "out", "", "Directory the chart images are written to")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	fs.BoolVar(&opts.rateLimit, "rate-limit", true, "Enable API rate limiting")
	fs.BoolVar(&opts.verbose, "v", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	// Positional arguments are whole city names, so "New York" can be passed quoted
	opts.cities = append(opts.cities, fs.Args()...)
	return opts, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = !verbose
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		logger.Error("Failed to load configuration", zap.String("path", opts.configFile), zap.Error(err))
		return 1
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.metricsFile != "" {
		cfg.Metrics.Textfile = opts.metricsFile
	}

	cities := []string(opts.cities)
	if len(cities) == 0 {
		cities = cfg.Cities()
	}

	apiKey, err := config.LoadAPIKey(opts.envFile)
	if err != nil {
		logger.Warn("Could not load env file, using process environment", zap.Error(err))
	}
	if apiKey == "" {
		logger.Warn("No API key found", zap.String("env", config.APIKeyEnv))
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", zap.Error(err))
		return 1
	}

	source := buildSource(cfg, apiKey, opts.rateLimit, logger)
	logger.Debug("Forecast source ready", zap.String("source", source.Name()), zap.Strings("cities", cities))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := collector.New(
		source,
		aggregate.New(loc, cfg.Forecast.Days),
		render.NewChartRenderer(cfg.Output.Dir, cfg.Output.Width, cfg.Output.Height, logger),
		stdout,
		logger,
	)
	outcomes := c.Run(ctx, cities)

	counts := collector.Counts(outcomes)
	logger.Info("Run complete",
		zap.Int("ok", counts[collector.StatusOK]),
		zap.Int("api_errors", counts[collector.StatusAPIError]),
		zap.Int("failed", counts[collector.StatusFailed]),
	)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics textfile", zap.Error(err))
		}
	}

	return 0
}

// buildSource wraps the API client with rate limiting and caching as configured
func buildSource(cfg *config.Config, apiKey string, rateLimit bool, logger *zap.Logger) datasource.ForecastSource {
	owm := cfg.OpenWeatherMap

	var source datasource.ForecastSource = datasource.NewOpenWeatherMapSource(apiKey,
		datasource.WithBaseURL(owm.BaseURL),
		datasource.WithUnits(owm.Units),
		datasource.WithTimeout(owm.Timeout),
		datasource.WithLogger(logger),
	)

	if rateLimit && owm.RateLimit.Enabled {
		source = datasource.NewRateLimitedForecastSource(source, owm.RateLimit.RPS, owm.RateLimit.Burst)
		logger.Debug("Applied rate limiting", zap.Float64("rps", owm.RateLimit.RPS), zap.Int("burst", owm.RateLimit.Burst))
	}

	if cfg.Cache.TTL > 0 {
		source = cache.NewCachedForecastSource(source, cfg.Cache.TTL, logger)
	}

	return source
}

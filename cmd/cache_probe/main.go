package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"weather-forecaster/cache"
	"weather-forecaster/config"
	"weather-forecaster/datasource"
)

func main() {
	envFile := flag.String("envfile", config.DefaultEnvFile, "Path to the env file holding "+config.APIKeyEnv)
	cities := flag.String("cities", "London,UK Oslo,NO", "Space separated list of cities")
	ttl := flag.Duration("ttl", 15*time.Second, "Cache duration")
	rounds := flag.Int("rounds", 3, "Number of request rounds before waiting for expiry")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	apiKey, err := config.LoadAPIKey(*envFile)
	if err != nil {
		logger.Warn("Could not load env file", zap.Error(err))
	}
	if apiKey == "" {
		logger.Fatal("No API key provided", zap.String("env", config.APIKeyEnv))
	}

	owm := datasource.NewOpenWeatherMapSource(apiKey, datasource.WithLogger(logger))
	limited := datasource.NewRateLimitedForecastSource(owm, 1, 5)
	cached := cache.NewCachedForecastSource(limited, *ttl, logger)

	ctx := context.Background()
	locations := strings.Fields(*cities)

	fmt.Printf("=== Probing %s ===\n", cached.Name())
	for i := 1; i <= *rounds; i++ {
		fmt.Printf("\n*** Round %d ***\n", i)
		fetchAll(ctx, cached, locations)
	}

	fmt.Printf("\nWaiting for cache to expire (%s)...\n", *ttl)
	time.Sleep(*ttl + time.Second)

	fmt.Println("\n*** After expiry ***")
	fetchAll(ctx, cached, locations)

	hits, misses := cached.CacheStats()
	fmt.Printf("\nStats for %s: %d cache hits, %d cache misses\n", cached.Name(), hits, misses)
}

func fetchAll(ctx context.Context, source datasource.ForecastSource, locations []string) {
	for _, location := range locations {
		start := time.Now()
		resp, err := source.FetchForecast(ctx, location)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if !resp.OK() {
			fmt.Printf("Error fetching data for %s: %s\n", location, resp.ErrorMessage())
			continue
		}
		fmt.Printf("%s: %d samples for %s, %s in %v\n",
			location, len(resp.List), resp.City.Name, resp.City.Country, time.Since(start).Round(time.Millisecond))
	}
}

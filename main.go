package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"weather-dashboard/api"
	"weather-dashboard/cache"
	"weather-dashboard/client"
	"weather-dashboard/collector"
	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/store"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	// Parse command line arguments
	port := flag.Int("port", 8080, "Port to run the server on")
	storePath := flag.String("store", "dashboard.db", "Path to the local state database")
	refreshInterval := flag.Duration("refresh", 15*time.Minute, "Background weather refresh interval")
	cacheTTL := flag.Duration("cache-ttl", 10*time.Minute, "Weather cache entry lifetime")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable provider rate limiting")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := datasource.LoadConfig()
	logger.Info("configuration loaded",
		"backend", cfg.BaseURL,
		"default_city", cfg.DefaultCity,
	)

	st, err := store.Open(*storePath)
	if err != nil {
		logger.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	sessionID, err := st.SessionID()
	if err != nil {
		logger.Error("failed to establish session", "error", err)
		os.Exit(1)
	}
	logger.Info("session established", "session_id", sessionID)

	// Build the provider chains: the primary backend first, then the public
	// fallbacks.
	backend := datasource.NewBackend(cfg.BaseURL, sessionID, cfg.HTTPTimeout)
	openMeteo := datasource.NewOpenMeteoProvider(cfg.HTTPTimeout)
	omGeocoder := datasource.NewOpenMeteoGeocoder(cfg.HTTPTimeout)
	nominatim := datasource.NewNominatimGeocoder(cfg.UserAgent, cfg.HTTPTimeout)

	var fallbackWeather datasource.WeatherSource = openMeteo
	var omSearch datasource.Geocoder = omGeocoder
	var omReverse datasource.ReverseGeocoder = omGeocoder
	var nomSearch datasource.Geocoder = nominatim
	var nomReverse datasource.ReverseGeocoder = nominatim

	if *enableRateLimiting {
		// Open-Meteo tolerates moderate traffic; Nominatim's usage policy
		// allows at most one request per second.
		fallbackWeather = datasource.NewRateLimitedProvider(openMeteo, 2.0, 1.0, 5)
		rlOM := datasource.NewRateLimitedGeocoder(omGeocoder, 2.0, 5)
		rlNom := datasource.NewRateLimitedGeocoder(nominatim, 1.0, 1)
		omSearch, omReverse = rlOM, rlOM
		nomSearch, nomReverse = rlNom, rlNom
		logger.Info("provider rate limiting enabled")
	}

	cachedFallbackCurrent := cache.NewCachedCurrentSource(fallbackWeather, *cacheTTL)
	cachedFallbackForecast := cache.NewCachedForecastSource(fallbackWeather, *cacheTTL)

	cli := client.New(client.Config{
		Backend:  backend,
		Current:  []datasource.CurrentSource{backend, cachedFallbackCurrent},
		Forecast: []datasource.ForecastSource{backend, cachedFallbackForecast},
		Search:   []datasource.Geocoder{backend, omSearch, nomSearch},
		Reverse:  []datasource.ReverseGeocoder{omReverse, nomReverse},
		Logger:   logger,
	})

	enrich := datasource.NewEnrichmentClient(cfg.HTTPTimeout)
	dash := dashboard.New(cli, enrich, cfg, logger)

	// Keep the cache warm for the default and saved locations.
	coll := collector.NewCollector(cli, cfg.DefaultCity, cfg.DefaultLat, cfg.DefaultLon)
	coll.SetInterval(*refreshInterval)
	coll.SetFetchTimeout(cfg.HTTPTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCollector := coll.Start(ctx)
	go func() {
		for err := range coll.ErrorChannel() {
			logger.Warn("background refresh failed", "error", err)
		}
	}()
	go func() {
		for refresh := range coll.OutputChannel() {
			logger.Debug("background refresh complete", "city", refresh.City)
		}
	}()

	server := api.NewServer(cli, dash, st, logger, *port)

	go func() {
		if err := server.Start(); err != nil {
			logger.Info("server stopped", "error", err)
		}
	}()

	// Wait for shutdown signal
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdownChan
	logger.Info("shutting down", "signal", sig.String())

	stopCollector()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

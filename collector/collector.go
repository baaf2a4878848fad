// Package collector keeps the weather cache warm in the background. It
// periodically re-fetches current conditions for the default location and the
// session's saved locations, so dashboard loads mostly hit the cache.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"weather-dashboard/client"
	"weather-dashboard/models"
)

// Refresh describes one completed background fetch.
type Refresh struct {
	City   string
	Lat    float64
	Lon    float64
	Result models.CurrentResult
}

// Collector manages the periodic refresh of current conditions.
type Collector struct {
	client       *client.Client
	outputChan   chan Refresh
	errorChan    chan error
	defaultCity  string
	defaultLat   float64
	defaultLon   float64
	interval     time.Duration
	fetchTimeout time.Duration
}

// NewCollector creates a collector for the given client and default location.
func NewCollector(c *client.Client, city string, lat, lon float64) *Collector {
	return &Collector{
		client:       c,
		outputChan:   make(chan Refresh, 100),
		errorChan:    make(chan error, 100),
		defaultCity:  city,
		defaultLat:   lat,
		defaultLon:   lon,
		interval:     15 * time.Minute,
		fetchTimeout: 10 * time.Second,
	}
}

// SetInterval changes how often locations are refreshed.
func (dc *Collector) SetInterval(interval time.Duration) {
	dc.interval = interval
}

// SetFetchTimeout changes the timeout for individual fetches.
func (dc *Collector) SetFetchTimeout(timeout time.Duration) {
	dc.fetchTimeout = timeout
}

// OutputChannel returns the channel that emits completed refreshes.
func (dc *Collector) OutputChannel() <-chan Refresh {
	return dc.outputChan
}

// ErrorChannel returns the channel that emits errors.
func (dc *Collector) ErrorChannel() <-chan error {
	return dc.errorChan
}

// Start begins the refresh loop. The returned function stops it and waits for
// cleanup.
func (dc *Collector) Start(ctx context.Context) func() {
	collectionCtx, cancelCollection := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dc.run(collectionCtx)
	}()

	go func() {
		wg.Wait()
		close(dc.outputChan)
		close(dc.errorChan)
	}()

	return func() {
		cancelCollection()
		wg.Wait()
	}
}

func (dc *Collector) run(ctx context.Context) {
	ticker := time.NewTicker(dc.interval)
	defer ticker.Stop()

	// Do an initial refresh immediately
	dc.refreshAll(ctx)

	for {
		select {
		case <-ticker.C:
			dc.refreshAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// refreshAll fetches the default location plus every saved location once.
func (dc *Collector) refreshAll(ctx context.Context) {
	dc.fetchOnce(ctx, dc.defaultCity, dc.defaultLat, dc.defaultLon)

	listCtx, cancel := context.WithTimeout(ctx, dc.fetchTimeout)
	locations, err := dc.client.Locations(listCtx)
	cancel()
	if err != nil {
		dc.reportError(fmt.Errorf("error listing saved locations: %w", err))
		return
	}

	for _, loc := range locations {
		if ctx.Err() != nil {
			return
		}
		dc.fetchOnce(ctx, loc.CityName, loc.Latitude, loc.Longitude)
	}
}

// fetchOnce performs a single refresh for one location.
func (dc *Collector) fetchOnce(ctx context.Context, city string, lat, lon float64) {
	fetchCtx, cancel := context.WithTimeout(ctx, dc.fetchTimeout)
	defer cancel()

	result, err := dc.client.GetCurrentWeather(fetchCtx, lat, lon)
	if err != nil {
		dc.reportError(fmt.Errorf("error refreshing %s: %w", city, err))
		return
	}

	select {
	case dc.outputChan <- Refresh{City: city, Lat: lat, Lon: lon, Result: result}:
	case <-ctx.Done():
	}
}

func (dc *Collector) reportError(err error) {
	select {
	case dc.errorChan <- err:
	default:
		// Drop when the error channel is full; refreshes are best effort.
	}
}

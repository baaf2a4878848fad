package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
)

type stubFullGeocoder struct {
	calls int
}

func (s *stubFullGeocoder) Search(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	s.calls++
	return []models.GeocodeResult{{Name: query, Lat: 1, Lon: 1}}, nil
}

func (s *stubFullGeocoder) Reverse(ctx context.Context, lat, lon float64) (models.GeocodeResult, error) {
	s.calls++
	return models.GeocodeResult{Name: "place", Lat: lat, Lon: lon}, nil
}

func (s *stubFullGeocoder) Name() string { return "stub" }

func TestRateLimitedGeocoderPassesThrough(t *testing.T) {
	stub := &stubFullGeocoder{}
	rl := NewRateLimitedGeocoder(stub, 100, 1)

	assert.Equal(t, "stub [Rate Limited]", rl.Name())

	results, err := rl.Search(context.Background(), "x", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, err = rl.Reverse(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestRateLimitedGeocoderDelaysBeyondBurst(t *testing.T) {
	stub := &stubFullGeocoder{}
	rl := NewRateLimitedGeocoder(stub, 10, 1) // 1 burst, then 100ms spacing

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := rl.Search(context.Background(), "x", 1)
		require.NoError(t, err)
	}
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond, "two of three calls must wait for tokens")
}

func TestRateLimitedGeocoderHonorsCancellation(t *testing.T) {
	stub := &stubFullGeocoder{}
	rl := NewRateLimitedGeocoder(stub, 0.1, 1) // ten seconds per token

	_, err := rl.Search(context.Background(), "x", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rl.Search(ctx, "y", 1)
	require.Error(t, err, "a canceled wait surfaces instead of blocking")
	assert.Equal(t, 1, stub.calls)
}

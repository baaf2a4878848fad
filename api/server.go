// Package api exposes the dashboard over HTTP. Every response uses the
// {success, data, message, error} envelope the frontend expects.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"weather-dashboard/client"
	"weather-dashboard/dashboard"
	"weather-dashboard/datasource"
	"weather-dashboard/models"
	"weather-dashboard/normalize"
	"weather-dashboard/store"
)

// Server represents the API server
type Server struct {
	client    *client.Client
	dashboard *dashboard.Dashboard
	store     *store.Store
	locator   dashboard.Locator
	logger    *slog.Logger
	server    *http.Server
}

// NewServer creates a new API server listening on the given port.
func NewServer(c *client.Client, d *dashboard.Dashboard, st *store.Store, logger *slog.Logger, port int) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		client:    c,
		dashboard: d,
		store:     st,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/weather/current", s.handleCurrent)
		r.Get("/weather/forecast", s.handleForecast)
		r.Get("/dashboard/home", s.handleHome)
		r.Get("/locations/search", s.handleSearch)
		r.Get("/locations", s.handleLocations)
		r.Post("/locations", s.handleSaveLocation)
		r.Delete("/locations/{id}", s.handleDeleteLocation)
		r.Post("/locations/{id}/favorite", s.handleToggleFavorite)
		r.Get("/preferences", s.handlePreferences)
		r.Post("/preferences/update", s.handleUpdatePreferences)
		r.Get("/searches/recent", s.handleRecentSearches)
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
	return s
}

// SetLocator installs a position source consulted when a request carries no
// coordinates. Without one those requests resolve to the default location.
func (s *Server) SetLocator(loc dashboard.Locator) {
	s.locator = loc
}

// Start begins the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// fail classifies the error into a status code and user-facing message.
func (s *Server) fail(w http.ResponseWriter, err error) {
	c := normalize.Classify(err, false)

	status := http.StatusInternalServerError
	switch c.Category {
	case normalize.CategoryValidation:
		status = http.StatusBadRequest
	case normalize.CategoryUnauthorized:
		status = http.StatusUnauthorized
	case normalize.CategoryNotFound:
		status = http.StatusNotFound
	case normalize.CategoryRateLimited:
		status = http.StatusTooManyRequests
	case normalize.CategoryTimeout:
		status = http.StatusGatewayTimeout
	case normalize.CategoryNetwork, normalize.CategoryOffline:
		status = http.StatusBadGateway
	}

	s.logger.Warn("request failed", "category", c.Category, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(envelope{Success: false, Error: c.Message}); encErr != nil {
		s.logger.Error("failed to encode error response", "error", encErr)
	}
}

func parseCoords(r *http.Request) (float64, float64, error) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, errors.New("invalid coordinates: lat and lon are required")
	}
	return lat, lon, nil
}

func parseUnit(r *http.Request) models.Unit {
	if models.Unit(r.URL.Query().Get("unit")) == models.UnitFahrenheit {
		return models.UnitFahrenheit
	}
	return models.UnitCelsius
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	backend := "ok"
	if err := s.client.Health(r.Context()); err != nil {
		backend = "unreachable"
	}
	s.respond(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"backend":   backend,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoords(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	result, err := s.client.GetCurrentWeather(r.Context(), lat, lon)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, normalize.Current(result, normalize.Options{Unit: parseUnit(r)}))
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoords(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	days := 7
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 {
		days = d
	}

	forecast, err := s.client.GetForecast(r.Context(), lat, lon, days)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, normalize.Forecast(forecast, normalize.Options{Unit: parseUnit(r)}, time.Now()))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")

	var lat, lon float64
	if q.Get("lat") == "" && q.Get("lon") == "" {
		// No coordinates given: resolve the viewer's position, falling back
		// to the configured default location.
		var resolved string
		resolved, lat, lon = s.dashboard.ResolveLocation(r.Context(), s.locator)
		if city == "" {
			city = resolved
		}
	} else {
		var err error
		lat, lon, err = parseCoords(r)
		if err != nil {
			s.fail(w, err)
			return
		}
	}

	view, err := s.dashboard.Home(r.Context(), city, lat, lon, parseUnit(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, view)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 0
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = n
	}

	results, err := s.client.SearchLocation(r.Context(), query, limit)
	if err != nil {
		s.fail(w, err)
		return
	}

	// Record the query best effort; history failures never fail the search.
	if s.store != nil {
		if err := s.store.AddRecentSearch(query); err != nil {
			s.logger.Warn("failed to record search", "error", err)
		}
	}
	s.respond(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.dashboard.Locations(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"locations": locations})
}

func (s *Server) handleSaveLocation(w http.ResponseWriter, r *http.Request) {
	var req datasource.SaveLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, errors.New("invalid request body"))
		return
	}

	location, created, err := s.client.SaveLocation(r.Context(), req)
	if err != nil {
		s.fail(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.respond(w, status, map[string]any{"location": location, "created": created})
}

func parseLocationID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid location id")
	}
	return id, nil
}

func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseLocationID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.client.DeleteLocation(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := parseLocationID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	location, err := s.client.ToggleFavorite(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"location": location})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.client.Preferences(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"preferences": prefs})
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var update datasource.PreferencesUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.fail(w, errors.New("invalid request body"))
		return
	}

	prefs, err := s.client.UpdatePreferences(r.Context(), update)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"preferences": prefs})
}

func (s *Server) handleRecentSearches(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respond(w, http.StatusOK, map[string]any{"searches": []string{}})
		return
	}
	searches, err := s.store.RecentSearches()
	if err != nil {
		s.fail(w, err)
		return
	}
	if searches == nil {
		searches = []string{}
	}
	s.respond(w, http.StatusOK, map[string]any{"searches": searches})
}

package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zanaca/ha-inmet-weather/internal/alerts"
	"github.com/zanaca/ha-inmet-weather/internal/api"
	"github.com/zanaca/ha-inmet-weather/internal/config"
	"github.com/zanaca/ha-inmet-weather/internal/models"
	"github.com/zanaca/ha-inmet-weather/internal/normalize"
	"github.com/zanaca/ha-inmet-weather/internal/store"
	"github.com/zanaca/ha-inmet-weather/internal/weather"
)

// HistoryStore is the persisted-data surface the server reads.
// *database.DB implements it.
type HistoryStore interface {
	GetObservations(location string, since time.Time) ([]models.Observation, error)
	GetLatestObservation(location string) (*models.Observation, error)
	GetAlerts(location string, limit int) ([]models.Alert, error)
}

// Server represents the HTTP server
type Server struct {
	svc       *weather.Service
	store     *store.Store
	db        HistoryStore // may be nil, history endpoints report unavailable
	evaluator *alerts.Evaluator
	mux       *http.ServeMux
}

// NewServer creates a new HTTP server. db may be nil when no database is
// configured.
func NewServer(svc *weather.Service, st *store.Store, db HistoryStore) *Server {
	s := &Server{
		svc:       svc,
		store:     st,
		db:        db,
		evaluator: alerts.NewEvaluator(),
		mux:       http.NewServeMux(),
	}

	// Register routes
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/stations", s.handleStations)
	s.mux.HandleFunc("/current", s.handleCurrent)
	s.mux.HandleFunc("/forecast", s.handleForecast)
	s.mux.HandleFunc("/alerts", s.handleAlerts)
	s.mux.HandleFunc("/history", s.handleHistory)
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// Handler exposes the mux for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

// handleStations returns the reference station table, or the single nearest
// station when lat/lon query parameters are present.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if latStr == "" && lonStr == "" {
		stations := s.svc.Stations()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    len(stations),
			"stations": stations,
		})
		return
	}

	coords, ok := parseCoords(w, latStr, lonStr)
	if !ok {
		return
	}

	ref := s.svc.Resolve(coords)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ref)
}

// handleCurrent fetches live current conditions for the named location. On a
// network failure the last stored snapshot is served instead, flagged stale.
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	loc, coords, ok := s.lookupLocation(w, r)
	if !ok {
		return
	}

	snap, err := s.svc.GetSnapshot(r.Context(), loc.Name, coords)
	if err != nil {
		s.serveUpstreamError(w, loc.Name, err, func(stale models.Snapshot, at time.Time) interface{} {
			return map[string]interface{}{
				"location": stale.Location,
				"current":  stale.Current,
				"stale":    true,
				"as_of":    at,
			}
		})
		return
	}

	s.store.Update(loc.Name, snap)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"location": snap.Location,
		"geocode":  snap.Geocode,
		"current":  snap.Current,
	})
}

// handleForecast fetches the live multi-day forecast for the named location.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	loc, coords, ok := s.lookupLocation(w, r)
	if !ok {
		return
	}

	snap, err := s.svc.GetSnapshot(r.Context(), loc.Name, coords)
	if err != nil {
		s.serveUpstreamError(w, loc.Name, err, func(stale models.Snapshot, at time.Time) interface{} {
			return map[string]interface{}{
				"location": stale.Location,
				"forecast": stale.Forecast,
				"stale":    true,
				"as_of":    at,
			}
		})
		return
	}

	s.store.Update(loc.Name, snap)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"location": snap.Location,
		"geocode":  snap.Geocode,
		"count":    len(snap.Forecast),
		"forecast": snap.Forecast,
	})
}

// handleAlerts evaluates alerts against the latest snapshot for the location.
// It prefers the stored snapshot and only fetches when none exists yet. When a
// database is configured, previously persisted alerts are included.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	loc, coords, ok := s.lookupLocation(w, r)
	if !ok {
		return
	}

	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	snap, _, found := s.store.Latest(loc.Name)
	if !found {
		var err error
		snap, err = s.svc.GetSnapshot(r.Context(), loc.Name, coords)
		if err != nil {
			s.serveUpstreamError(w, loc.Name, err, nil)
			return
		}
		s.store.Update(loc.Name, snap)
	}

	triggered := s.evaluator.Evaluate(snap)

	response := map[string]interface{}{
		"location": loc.Name,
		"count":    len(triggered),
		"alerts":   triggered,
	}

	if s.db != nil {
		recent, err := s.db.GetAlerts(loc.Name, limit)
		if err != nil {
			log.Printf("Failed to read stored alerts for %s: %v", loc.Name, err)
		} else {
			response["recent"] = recent
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleHistory returns stored observations for a location
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "History unavailable: no database configured", http.StatusServiceUnavailable)
		return
	}

	loc, _, ok := s.lookupLocation(w, r)
	if !ok {
		return
	}

	hoursStr := r.URL.Query().Get("hours")
	hours := 24
	if hoursStr != "" {
		if h, err := strconv.Atoi(hoursStr); err == nil {
			hours = h
		}
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	observations, err := s.db.GetObservations(loc.Name, since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"location":     loc.Name,
		"hours":        hours,
		"count":        len(observations),
		"observations": observations,
	}

	// Newest stored row, independent of the hours window
	if latest, err := s.db.GetLatestObservation(loc.Name); err == nil {
		response["latest"] = latest
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// lookupLocation resolves the "location" query parameter against the
// configured locations. Writes a 400/404 and returns ok=false on failure.
func (s *Server) lookupLocation(w http.ResponseWriter, r *http.Request) (config.Location, models.Coordinates, bool) {
	name := r.URL.Query().Get("location")
	if name == "" {
		http.Error(w, "Missing location parameter", http.StatusBadRequest)
		return config.Location{}, models.Coordinates{}, false
	}

	for _, loc := range config.Get().Weather.Locations {
		if loc.Name == name {
			return loc, models.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}, true
		}
	}

	http.Error(w, "Unknown location: "+name, http.StatusNotFound)
	return config.Location{}, models.Coordinates{}, false
}

// serveUpstreamError maps upstream failures to responses. Network errors fall
// back to the last stored snapshot when one exists and staleBody is non-nil.
func (s *Server) serveUpstreamError(w http.ResponseWriter, location string, err error, staleBody func(models.Snapshot, time.Time) interface{}) {
	var netErr *api.NetworkError
	var fmtErr *normalize.DataFormatError

	switch {
	case errors.As(err, &netErr):
		log.Printf("Upstream fetch failed for %s: %v", location, err)
		if staleBody != nil {
			if stale, at, ok := s.store.Latest(location); ok {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(staleBody(stale, at))
				return
			}
		}
		http.Error(w, "Upstream unavailable: "+err.Error(), http.StatusBadGateway)
	case errors.As(err, &fmtErr):
		log.Printf("Upstream payload malformed for %s: %v", location, err)
		http.Error(w, "Upstream returned malformed data: "+err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseCoords(w http.ResponseWriter, latStr, lonStr string) (models.Coordinates, bool) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		http.Error(w, "Invalid lat parameter", http.StatusBadRequest)
		return models.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		http.Error(w, "Invalid lon parameter", http.StatusBadRequest)
		return models.Coordinates{}, false
	}

	if lat < -90 || lat > 90 {
		http.Error(w, "Latitude must be between -90 and 90", http.StatusBadRequest)
		return models.Coordinates{}, false
	}
	if lon < -180 || lon > 180 {
		http.Error(w, "Longitude must be between -180 and 180", http.StatusBadRequest)
		return models.Coordinates{}, false
	}

	return models.Coordinates{Latitude: lat, Longitude: lon}, true
}

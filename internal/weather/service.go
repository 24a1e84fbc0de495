// Package weather ties the resolver, API client and normalizer together into
// the two operations polling coordinators call.
package weather

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/zanaca/ha-inmet-weather/internal/api"
	"github.com/zanaca/ha-inmet-weather/internal/geo"
	"github.com/zanaca/ha-inmet-weather/internal/models"
	"github.com/zanaca/ha-inmet-weather/internal/normalize"
)

// Service resolves coordinates to a geocode and fetches normalized records.
// It holds no state across calls beyond the static station table; scheduling,
// retries and last-known-good caching belong to the caller.
type Service struct {
	stations *geo.StationTable
	client   api.Fetcher
}

// NewService creates a weather service over the given station table and
// fetcher.
func NewService(stations *geo.StationTable, client api.Fetcher) *Service {
	return &Service{
		stations: stations,
		client:   client,
	}
}

// Resolve maps coordinates to the nearest reference station. Never fails: the
// table is non-empty.
func (s *Service) Resolve(coords models.Coordinates) models.StationReference {
	return s.stations.Nearest(coords.Latitude, coords.Longitude)
}

// Stations returns the reference table entries.
func (s *Service) Stations() []models.StationReference {
	return s.stations.Stations()
}

// GetCurrent fetches and normalizes current conditions for the coordinates.
// Errors are *api.NetworkError or *normalize.DataFormatError.
func (s *Service) GetCurrent(ctx context.Context, coords models.Coordinates) (models.CurrentConditions, error) {
	ref := s.Resolve(coords)

	raw, err := s.client.FetchCurrent(ctx, ref.Geocode)
	if err != nil {
		return models.CurrentConditions{}, err
	}

	cur, err := normalize.Current(raw)
	if err != nil {
		return models.CurrentConditions{}, err
	}

	if cur.Geocode == "" {
		cur.Geocode = ref.Geocode
	}
	return cur, nil
}

// GetForecast fetches and normalizes the multi-day forecast for the
// coordinates. Errors are *api.NetworkError or *normalize.DataFormatError.
func (s *Service) GetForecast(ctx context.Context, coords models.Coordinates) ([]models.ForecastPeriod, error) {
	ref := s.Resolve(coords)

	raw, err := s.client.FetchForecast(ctx, ref.Geocode)
	if err != nil {
		return nil, err
	}

	return normalize.Forecast(raw)
}

// GetSnapshot fetches current conditions and forecast concurrently (the two
// calls have no ordering dependency) and combines them. The current condition
// code is backfilled from the forecast period covering now, since the
// observations endpoint carries no condition text.
func (s *Service) GetSnapshot(ctx context.Context, location string, coords models.Coordinates) (models.Snapshot, error) {
	ref := s.Resolve(coords)

	if !geo.InBrazil(coords.Latitude, coords.Longitude) {
		log.Printf("Warning: coordinates (%.4f, %.4f) for %s are outside Brazil, using nearest station %s anyway",
			coords.Latitude, coords.Longitude, location, ref.Name)
	}

	var (
		wg     sync.WaitGroup
		rawCur []byte
		rawFc  []byte
		curErr error
		fcErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		rawCur, curErr = s.client.FetchCurrent(ctx, ref.Geocode)
	}()
	go func() {
		defer wg.Done()
		rawFc, fcErr = s.client.FetchForecast(ctx, ref.Geocode)
	}()
	wg.Wait()

	if curErr != nil {
		return models.Snapshot{}, curErr
	}
	if fcErr != nil {
		return models.Snapshot{}, fcErr
	}

	cur, err := normalize.Current(rawCur)
	if err != nil {
		return models.Snapshot{}, err
	}
	periods, err := normalize.Forecast(rawFc)
	if err != nil {
		return models.Snapshot{}, err
	}

	now := time.Now().UTC()
	if cur.Condition == "" {
		cur.Condition = normalize.ConditionAt(periods, now)
	}
	if cur.Geocode == "" {
		cur.Geocode = ref.Geocode
	}

	return models.Snapshot{
		Location:  location,
		Geocode:   ref.Geocode,
		Current:   cur,
		Forecast:  periods,
		FetchedAt: now,
	}, nil
}

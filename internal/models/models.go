package models

import "time"

// StationReference is one entry of the static municipality reference table
// used to resolve coordinates to an INMET geocode.
type StationReference struct {
	Geocode   string  `json:"geocode"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates is a latitude/longitude pair supplied by configuration.
type Coordinates struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Period is the part of the day a forecast entry covers.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// Trend describes the expected direction of a temperature between periods.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
	TrendUnknown Trend = ""
)

// CurrentConditions is a normalized station observation. Readings the station
// did not report are nil.
type CurrentConditions struct {
	Geocode        string    `json:"geocode"`
	StationCode    string    `json:"station_code"`
	StationName    string    `json:"station_name"`
	Temperature    *float64  `json:"temperature"`          // °C
	ApparentTemp   *float64  `json:"apparent_temperature"` // °C, heat index
	TempMin        *float64  `json:"temp_min"`             // °C, daily minimum so far
	TempMax        *float64  `json:"temp_max"`             // °C, daily maximum so far
	Humidity       *float64  `json:"humidity"`             // %
	Pressure       *float64  `json:"pressure"`             // hPa
	WindSpeed      *float64  `json:"wind_speed"`           // m/s
	WindGust       *float64  `json:"wind_gust"`            // m/s
	WindBearing    *float64  `json:"wind_bearing"`         // degrees
	DewPoint       *float64  `json:"dew_point"`            // °C
	SolarRadiation *float64  `json:"solar_radiation"`      // kJ/m²
	Rainfall       *float64  `json:"rainfall"`             // mm accumulated
	Condition      string    `json:"condition"`
	ObservedAt     time.Time `json:"observed_at"`
}

// ForecastPeriod is one normalized forecast entry. INMET publishes three
// periods per day for the first two days and a single whole-day entry beyond.
type ForecastPeriod struct {
	Date          time.Time `json:"date"`
	Period        Period    `json:"period"`
	Condition     string    `json:"condition"`
	Summary       string    `json:"summary"` // upstream resumo text
	TempMax       *float64  `json:"temp_max"`
	TempMin       *float64  `json:"temp_min"`
	HumidityMax   *float64  `json:"humidity_max"`
	HumidityMin   *float64  `json:"humidity_min"`
	WindDirection string    `json:"wind_direction"` // e.g. "N-NE"
	WindIntensity string    `json:"wind_intensity"` // e.g. "Fracos"
	TempMaxTrend  Trend     `json:"temp_max_trend"`
	TempMinTrend  Trend     `json:"temp_min_trend"`
	IconCode      string    `json:"icon_code"`
}

// Snapshot is the combined result of one poll cycle for a location. It is
// replaced wholesale on every cycle.
type Snapshot struct {
	Location  string            `json:"location"`
	Geocode   string            `json:"geocode"`
	Current   CurrentConditions `json:"current"`
	Forecast  []ForecastPeriod  `json:"forecast"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Alert is a severe-weather condition derived from a snapshot.
type Alert struct {
	Location    string    `json:"location"`
	Geocode     string    `json:"geocode"`
	Date        time.Time `json:"date"`
	Period      Period    `json:"period"`
	Kind        string    `json:"kind"`     // "storm", "heavy_rain", "heat", "wind", "dry_air"
	Severity    string    `json:"severity"` // "low", "medium", "high"
	Description string    `json:"description"`
}

// Observation is a stored observation row.
type Observation struct {
	ID       int64  `json:"id"`
	Location string `json:"location"`
	CurrentConditions
	FetchedAt time.Time `json:"fetched_at"`
}

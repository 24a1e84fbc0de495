package alerts

import (
	"testing"
	"time"

	"github.com/zanaca/ha-inmet-weather/internal/models"
)

func f(v float64) *float64 { return &v }

func baseSnapshot() models.Snapshot {
	return models.Snapshot{
		Location: "rio",
		Geocode:  "3304557",
		Current: models.CurrentConditions{
			ObservedAt: time.Date(2025, 10, 17, 16, 0, 0, 0, time.UTC),
		},
		FetchedAt: time.Now(),
	}
}

func findAlert(alerts []models.Alert, kind string) *models.Alert {
	for i := range alerts {
		if alerts[i].Kind == kind {
			return &alerts[i]
		}
	}
	return nil
}

func TestEvaluate_QuietWeather(t *testing.T) {
	snap := baseSnapshot()
	snap.Current.WindGust = f(5)
	snap.Forecast = []models.ForecastPeriod{
		{
			Date: time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC), Period: models.PeriodMorning,
			Condition: "partlycloudy", TempMax: f(27), HumidityMin: f(55), WindIntensity: "Fracos",
		},
	}

	alerts := NewEvaluator().Evaluate(snap)
	if len(alerts) != 0 {
		t.Errorf("Expected no alerts for quiet weather, got %d: %+v", len(alerts), alerts)
	}
}

func TestEvaluate_ObservedGust(t *testing.T) {
	snap := baseSnapshot()
	snap.Current.WindGust = f(23.5)

	alerts := NewEvaluator().Evaluate(snap)
	a := findAlert(alerts, "wind")
	if a == nil {
		t.Fatal("Expected wind alert for observed gust above threshold")
	}
	if a.Severity != "high" {
		t.Errorf("Expected high severity, got %s", a.Severity)
	}
	if !a.Date.Equal(snap.Current.ObservedAt) {
		t.Errorf("Expected alert dated at observation time, got %s", a.Date)
	}
}

func TestEvaluate_Storm(t *testing.T) {
	snap := baseSnapshot()
	snap.Forecast = []models.ForecastPeriod{
		{
			Date: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), Period: models.PeriodAfternoon,
			Condition: "lightning-rainy", Summary: "Chuva com trovoada", WindIntensity: "Moderados",
		},
	}

	alerts := NewEvaluator().Evaluate(snap)
	a := findAlert(alerts, "storm")
	if a == nil {
		t.Fatal("Expected storm alert for lightning-rainy forecast")
	}
	if a.Severity != "medium" {
		t.Errorf("Expected medium severity without strong winds, got %s", a.Severity)
	}
	if a.Period != models.PeriodAfternoon {
		t.Errorf("Expected afternoon period, got %s", a.Period)
	}
}

func TestEvaluate_StormWithStrongWind(t *testing.T) {
	snap := baseSnapshot()
	snap.Forecast = []models.ForecastPeriod{
		{
			Date: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), Period: models.PeriodEvening,
			Condition: "lightning-rainy", Summary: "Tempestade", WindIntensity: "Fortes",
		},
	}

	alerts := NewEvaluator().Evaluate(snap)
	a := findAlert(alerts, "storm")
	if a == nil {
		t.Fatal("Expected storm alert")
	}
	if a.Severity != "high" {
		t.Errorf("Expected high severity with strong winds, got %s", a.Severity)
	}

	// The wind risk is folded into the storm alert, not duplicated
	if findAlert(alerts, "wind") != nil {
		t.Error("Expected no separate wind alert when the storm alert covers it")
	}
}

func TestEvaluate_HeavyRain(t *testing.T) {
	snap := baseSnapshot()
	snap.Forecast = []models.ForecastPeriod{
		{
			Date: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), Period: models.PeriodMorning,
			Condition: "pouring", Summary: "Pancadas de chuva",
		},
	}

	alerts := NewEvaluator().Evaluate(snap)
	if findAlert(alerts, "heavy_rain") == nil {
		t.Error("Expected heavy_rain alert for pouring forecast")
	}
}

func TestEvaluate_HeatSeverities(t *testing.T) {
	tests := []struct {
		name     string
		tempMax  float64
		severity string
	}{
		{"below threshold", 35, ""},
		{"low", 36.5, "low"},
		{"medium", 38.5, "medium"},
		{"high", 41, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := baseSnapshot()
			snap.Forecast = []models.ForecastPeriod{
				{
					Date: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), Period: models.PeriodAfternoon,
					Condition: "sunny", TempMax: f(tt.tempMax),
				},
			}

			a := findAlert(NewEvaluator().Evaluate(snap), "heat")
			if tt.severity == "" {
				if a != nil {
					t.Errorf("Expected no heat alert at %.1f°C, got %+v", tt.tempMax, a)
				}
				return
			}
			if a == nil {
				t.Fatalf("Expected heat alert at %.1f°C", tt.tempMax)
			}
			if a.Severity != tt.severity {
				t.Errorf("Expected %s severity at %.1f°C, got %s", tt.severity, tt.tempMax, a.Severity)
			}
		})
	}
}

func TestEvaluate_DryAirSeverities(t *testing.T) {
	tests := []struct {
		name     string
		humidity float64
		severity string
	}{
		{"comfortable", 45, ""},
		{"low", 28, "low"},
		{"medium", 18, "medium"},
		{"high", 10, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := baseSnapshot()
			snap.Forecast = []models.ForecastPeriod{
				{
					Date: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), Period: models.PeriodAfternoon,
					Condition: "sunny", HumidityMin: f(tt.humidity),
				},
			}

			a := findAlert(NewEvaluator().Evaluate(snap), "dry_air")
			if tt.severity == "" {
				if a != nil {
					t.Errorf("Expected no dry_air alert at %.0f%%, got %+v", tt.humidity, a)
				}
				return
			}
			if a == nil {
				t.Fatalf("Expected dry_air alert at %.0f%%", tt.humidity)
			}
			if a.Severity != tt.severity {
				t.Errorf("Expected %s severity at %.0f%%, got %s", tt.severity, tt.humidity, a.Severity)
			}
		})
	}
}

func TestEvaluate_ForecastWind(t *testing.T) {
	snap := baseSnapshot()
	snap.Forecast = []models.ForecastPeriod{
		{
			Date: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), Period: models.PeriodMorning,
			Condition: "cloudy", WindIntensity: "Moderado/Forte", WindDirection: "S",
		},
	}

	a := findAlert(NewEvaluator().Evaluate(snap), "wind")
	if a == nil {
		t.Fatal("Expected wind alert for strong forecast winds")
	}
	if a.Severity != "medium" {
		t.Errorf("Expected medium severity, got %s", a.Severity)
	}
}

func TestEvaluate_CarriesLocation(t *testing.T) {
	snap := baseSnapshot()
	snap.Forecast = []models.ForecastPeriod{
		{
			Date: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), Period: models.PeriodAfternoon,
			Condition: "sunny", TempMax: f(42),
		},
	}

	alerts := NewEvaluator().Evaluate(snap)
	if len(alerts) == 0 {
		t.Fatal("Expected at least one alert")
	}
	for _, a := range alerts {
		if a.Location != "rio" || a.Geocode != "3304557" {
			t.Errorf("Alert missing location context: %+v", a)
		}
	}
}

// Package alerts derives severe-weather alerts from normalized snapshots.
// Thresholds follow INMET's public warning bands (attention / alert /
// emergency) for heat, wind and dry air.
package alerts

import (
	"fmt"
	"strings"

	"github.com/zanaca/ha-inmet-weather/internal/models"
)

// Evaluator evaluates snapshots against fixed severe-weather rules.
type Evaluator struct {
	heatLow    float64 // °C forecast maximum for a low alert
	heatMedium float64
	heatHigh   float64
	gustHigh   float64 // m/s observed gust for a high alert
	dryLow     float64 // % forecast minimum humidity for a low alert
	dryMedium  float64
	dryHigh    float64
}

// NewEvaluator creates an evaluator with the default thresholds.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		heatLow:    36,
		heatMedium: 38,
		heatHigh:   40,
		gustHigh:   20,
		dryLow:     30,
		dryMedium:  20,
		dryHigh:    12,
	}
}

// Evaluate returns the alerts a snapshot triggers, in forecast order.
func (e *Evaluator) Evaluate(snap models.Snapshot) []models.Alert {
	var alerts []models.Alert

	if snap.Current.WindGust != nil && *snap.Current.WindGust >= e.gustHigh {
		alerts = append(alerts, models.Alert{
			Location:    snap.Location,
			Geocode:     snap.Geocode,
			Date:        snap.Current.ObservedAt,
			Kind:        "wind",
			Severity:    "high",
			Description: fmt.Sprintf("Observed wind gust of %.1f m/s", *snap.Current.WindGust),
		})
	}

	for _, p := range snap.Forecast {
		alerts = append(alerts, e.evaluatePeriod(snap, p)...)
	}

	return alerts
}

func (e *Evaluator) evaluatePeriod(snap models.Snapshot, p models.ForecastPeriod) []models.Alert {
	var alerts []models.Alert

	base := models.Alert{
		Location: snap.Location,
		Geocode:  snap.Geocode,
		Date:     p.Date,
		Period:   p.Period,
	}

	switch p.Condition {
	case "lightning-rainy":
		a := base
		a.Kind = "storm"
		a.Severity = "medium"
		if strongWind(p.WindIntensity) {
			a.Severity = "high"
		}
		a.Description = fmt.Sprintf("Thunderstorms forecast: %s", p.Summary)
		alerts = append(alerts, a)
	case "pouring":
		a := base
		a.Kind = "heavy_rain"
		a.Severity = "medium"
		a.Description = fmt.Sprintf("Heavy rain forecast: %s", p.Summary)
		alerts = append(alerts, a)
	}

	if p.TempMax != nil && *p.TempMax >= e.heatLow {
		a := base
		a.Kind = "heat"
		a.Severity = severityAbove(*p.TempMax, e.heatMedium, e.heatHigh)
		a.Description = fmt.Sprintf("Forecast maximum of %.0f°C", *p.TempMax)
		alerts = append(alerts, a)
	}

	if p.Condition != "lightning-rainy" && strongWind(p.WindIntensity) {
		a := base
		a.Kind = "wind"
		a.Severity = "medium"
		a.Description = fmt.Sprintf("Strong winds forecast (%s %s)", p.WindIntensity, p.WindDirection)
		alerts = append(alerts, a)
	}

	if p.HumidityMin != nil && *p.HumidityMin <= e.dryLow {
		a := base
		a.Kind = "dry_air"
		a.Severity = severityBelow(*p.HumidityMin, e.dryMedium, e.dryHigh)
		a.Description = fmt.Sprintf("Forecast minimum humidity of %.0f%%", *p.HumidityMin)
		alerts = append(alerts, a)
	}

	return alerts
}

// strongWind matches INMET's wind intensity wording ("Fortes",
// "Moderado/Forte").
func strongWind(intensity string) bool {
	return strings.Contains(strings.ToLower(intensity), "forte")
}

func severityAbove(value, medium, high float64) string {
	if value >= high {
		return "high"
	}
	if value >= medium {
		return "medium"
	}
	return "low"
}

func severityBelow(value, medium, high float64) string {
	if value <= high {
		return "high"
	}
	if value <= medium {
		return "medium"
	}
	return "low"
}

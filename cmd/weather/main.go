package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/zanaca/ha-inmet-weather/internal/alerts"
	"github.com/zanaca/ha-inmet-weather/internal/api"
	"github.com/zanaca/ha-inmet-weather/internal/geo"
	"github.com/zanaca/ha-inmet-weather/internal/models"
	"github.com/zanaca/ha-inmet-weather/internal/weather"
)

func main() {
	lat := flag.Float64("lat", -22.9068, "latitude")
	lon := flag.Float64("lon", -43.1729, "longitude")
	name := flag.String("name", "cli", "location label")
	flag.Parse()

	client := api.NewClient()
	svc := weather.NewService(geo.NewStationTable(), client)

	coords := models.Coordinates{Latitude: *lat, Longitude: *lon}
	ref := svc.Resolve(coords)
	log.Printf("Nearest station: %s (geocode %s, %.1f km away)",
		ref.Name, ref.Geocode, geo.Distance(*lat, *lon, ref.Latitude, ref.Longitude))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	snap, err := svc.GetSnapshot(ctx, *name, coords)
	if err != nil {
		log.Fatalf("Failed to fetch snapshot: %v", err)
	}

	fmt.Printf("=== Current conditions at %s (%s) ===\n", snap.Current.StationName, snap.Current.StationCode)
	printReading("Temperature", snap.Current.Temperature, "°C")
	printReading("Feels like", snap.Current.ApparentTemp, "°C")
	printReading("Today's min", snap.Current.TempMin, "°C")
	printReading("Today's max", snap.Current.TempMax, "°C")
	printReading("Humidity", snap.Current.Humidity, "%")
	printReading("Pressure", snap.Current.Pressure, "hPa")
	printReading("Wind speed", snap.Current.WindSpeed, "m/s")
	printReading("Wind gust", snap.Current.WindGust, "m/s")
	printReading("Dew point", snap.Current.DewPoint, "°C")
	printReading("Rainfall", snap.Current.Rainfall, "mm")
	if snap.Current.Condition != "" {
		fmt.Printf("  Condition:   %s\n", snap.Current.Condition)
	}
	fmt.Printf("  Observed at: %s\n", snap.Current.ObservedAt.Format(time.RFC3339))

	fmt.Println("=== Forecast ===")
	for _, p := range snap.Forecast {
		fmt.Printf("  %s %-9s | %-15s | %s", p.Date.Format("2006-01-02"), p.Period, p.Condition, p.Summary)
		if p.TempMin != nil && p.TempMax != nil {
			fmt.Printf(" | %.0f-%.0f°C", *p.TempMin, *p.TempMax)
		}
		fmt.Println()
	}

	triggered := alerts.NewEvaluator().Evaluate(snap)
	fmt.Println("=== Alerts ===")
	if len(triggered) == 0 {
		fmt.Println("No alerts")
	} else {
		for _, a := range triggered {
			fmt.Printf("  [%s] %s: %s\n", a.Severity, a.Kind, a.Description)
		}
	}
}

func printReading(label string, value *float64, unit string) {
	if value == nil {
		return
	}
	fmt.Printf("  %-12s %.1f %s\n", label+":", *value, unit)
}

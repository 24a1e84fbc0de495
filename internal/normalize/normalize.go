// Package normalize maps raw INMET payloads into the internal record shapes.
// The two upstream endpoints disagree on naming, casing and value typing
// (station observations arrive as strings, forecasts as numbers); everything
// downstream sees only the normalized records.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zanaca/ha-inmet-weather/internal/metrics"
	"github.com/zanaca/ha-inmet-weather/internal/models"
)

// DataFormatError means the API responded but the payload does not match the
// expected schema. Distinct from api.NetworkError so callers can tell "API
// unreachable" from "API changed under us".
type DataFormatError struct {
	Payload string // "current" or "forecast"
	Reason  string
	Err     error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inmet %s payload: %s: %v", e.Payload, e.Reason, e.Err)
	}
	return fmt.Sprintf("inmet %s payload: %s", e.Payload, e.Reason)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// currentResponse is the wire shape of GET /estacao/proxima/{geocode}.
// Observation values under "dados" are strings ("29", "1008.3").
type currentResponse struct {
	Estacao struct {
		Codigo  string `json:"CODIGO"`
		Nome    string `json:"NOME"`
		Geocode string `json:"GEOCODE"`
	} `json:"estacao"`
	Dados map[string]interface{} `json:"dados"`
}

// forecastEntry is the wire shape of one period (or whole-day) forecast under
// GET /previsao/{geocode}.
type forecastEntry struct {
	UF           string   `json:"uf"`
	Resumo       string   `json:"resumo"`
	TempMax      *float64 `json:"temp_max"`
	TempMin      *float64 `json:"temp_min"`
	DirVento     string   `json:"dir_vento"`
	IntVento     string   `json:"int_vento"`
	UmidadeMax   *float64 `json:"umidade_max"`
	UmidadeMin   *float64 `json:"umidade_min"`
	TempMaxTende string   `json:"temp_max_tende"`
	TempMinTende string   `json:"temp_min_tende"`
	CodIcone     string   `json:"cod_icone"`
}

// conditionMap maps INMET's Portuguese summaries to condition codes by
// substring match. Order matters: "pancadas de chuva" must win over "chuva",
// "poucas nuvens" over "nuvens".
var conditionMap = []struct {
	substr    string
	condition string
}{
	{"pancadas de chuva", "pouring"},
	{"pancada de chuva", "pouring"},
	{"trovoada", "lightning-rainy"},
	{"tempestade", "lightning-rainy"},
	{"chuva", "rainy"},
	{"neve", "snowy"},
	{"poucas nuvens", "partlycloudy"},
	{"parcialmente nublado", "partlycloudy"},
	{"muitas nuvens", "cloudy"},
	{"nublado", "cloudy"},
	{"encoberto", "cloudy"},
	{"céu claro", "sunny"},
	{"ceu claro", "sunny"},
	{"ensolarado", "sunny"},
	{"limpo", "sunny"},
	{"sol", "sunny"},
	{"neblina", "fog"},
	{"nevoeiro", "fog"},
	{"névoa", "fog"},
	{"nuvens", "partlycloudy"},
}

// periodKeys is INMET's within-day order.
var periodKeys = []struct {
	key    string
	period models.Period
}{
	{"manha", models.PeriodMorning},
	{"tarde", models.PeriodAfternoon},
	{"noite", models.PeriodEvening},
}

// Current maps a raw current-conditions payload into a CurrentConditions
// record. Missing or unparsable observation values map to nil, never to an
// error; a payload without the top-level "dados" object is a DataFormatError.
func Current(raw json.RawMessage) (models.CurrentConditions, error) {
	var resp currentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		metrics.RecordNormalizeFailure("current")
		return models.CurrentConditions{}, &DataFormatError{Payload: "current", Reason: "unexpected shape", Err: err}
	}

	if resp.Dados == nil {
		metrics.RecordNormalizeFailure("current")
		return models.CurrentConditions{}, &DataFormatError{Payload: "current", Reason: "missing dados object"}
	}

	cur := models.CurrentConditions{
		Geocode:        resp.Estacao.Geocode,
		StationCode:    resp.Estacao.Codigo,
		StationName:    resp.Estacao.Nome,
		Temperature:    floatField(resp.Dados, "TEM_INS"),
		ApparentTemp:   floatField(resp.Dados, "TEM_SEN"),
		TempMin:        floatField(resp.Dados, "TEM_MIN"),
		TempMax:        floatField(resp.Dados, "TEM_MAX"),
		Humidity:       floatField(resp.Dados, "UMD_INS"),
		Pressure:       floatField(resp.Dados, "PRE_INS"),
		WindSpeed:      floatField(resp.Dados, "VEN_VEL"),
		WindGust:       floatField(resp.Dados, "VEN_RAJ"),
		WindBearing:    floatField(resp.Dados, "VEN_DIR"),
		DewPoint:       floatField(resp.Dados, "PTO_INS"),
		SolarRadiation: floatField(resp.Dados, "RAD_GLO"),
		Rainfall:       floatField(resp.Dados, "CHUVA"),
		ObservedAt:     observationTime(stringField(resp.Dados, "DT_MEDICAO"), stringField(resp.Dados, "HR_MEDICAO")),
	}

	if cur.StationCode == "" {
		cur.StationCode = stringField(resp.Dados, "CD_ESTACAO")
	}

	return cur, nil
}

// Forecast maps a raw forecast payload into ForecastPeriod records, ordered
// by ascending date and then morning < afternoon < evening. Whole-day entries
// (days beyond the second, marked by a top-level "uf" field inside the date
// object) are tagged afternoon as the representative slot.
func Forecast(raw json.RawMessage) ([]models.ForecastPeriod, error) {
	var byGeocode map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byGeocode); err != nil {
		metrics.RecordNormalizeFailure("forecast")
		return nil, &DataFormatError{Payload: "forecast", Reason: "unexpected shape", Err: err}
	}

	if len(byGeocode) == 0 {
		metrics.RecordNormalizeFailure("forecast")
		return nil, &DataFormatError{Payload: "forecast", Reason: "missing forecast data"}
	}

	var periods []models.ForecastPeriod
	for _, byDate := range byGeocode {
		for dateStr, rawDay := range byDate {
			date, err := time.Parse("02/01/2006", dateStr)
			if err != nil {
				continue // keys other than dates are ignored
			}

			dayPeriods, err := parseDay(rawDay, date)
			if err != nil {
				metrics.RecordNormalizeFailure("forecast")
				return nil, err
			}
			periods = append(periods, dayPeriods...)
		}
	}

	if len(periods) == 0 {
		metrics.RecordNormalizeFailure("forecast")
		return nil, &DataFormatError{Payload: "forecast", Reason: "no forecast periods in payload"}
	}

	sort.SliceStable(periods, func(i, j int) bool {
		if !periods[i].Date.Equal(periods[j].Date) {
			return periods[i].Date.Before(periods[j].Date)
		}
		return periodRank(periods[i].Period) < periodRank(periods[j].Period)
	})

	return periods, nil
}

// parseDay handles one date object: either three period sub-objects or a
// single whole-day forecast entry.
func parseDay(raw json.RawMessage, date time.Time) ([]models.ForecastPeriod, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, &DataFormatError{Payload: "forecast", Reason: "unexpected day shape", Err: err}
	}

	// Whole-day entries carry the entry fields directly under the date.
	if _, ok := keys["uf"]; ok {
		var entry forecastEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, &DataFormatError{Payload: "forecast", Reason: "unexpected day entry", Err: err}
		}
		return []models.ForecastPeriod{newPeriod(date, models.PeriodAfternoon, entry)}, nil
	}

	var periods []models.ForecastPeriod
	for _, pk := range periodKeys {
		rawEntry, ok := keys[pk.key]
		if !ok {
			continue
		}
		var entry forecastEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			return nil, &DataFormatError{Payload: "forecast", Reason: fmt.Sprintf("unexpected %s entry", pk.key), Err: err}
		}
		periods = append(periods, newPeriod(date, pk.period, entry))
	}

	return periods, nil
}

func newPeriod(date time.Time, period models.Period, entry forecastEntry) models.ForecastPeriod {
	return models.ForecastPeriod{
		Date:          date,
		Period:        period,
		Condition:     MapCondition(entry.Resumo),
		Summary:       entry.Resumo,
		TempMax:       entry.TempMax,
		TempMin:       entry.TempMin,
		HumidityMax:   entry.UmidadeMax,
		HumidityMin:   entry.UmidadeMin,
		WindDirection: entry.DirVento,
		WindIntensity: entry.IntVento,
		TempMaxTrend:  MapTrend(entry.TempMaxTende),
		TempMinTrend:  MapTrend(entry.TempMinTende),
		IconCode:      entry.CodIcone,
	}
}

// MapCondition maps an INMET summary (resumo) to a condition code. Unknown
// summaries map to the empty string.
func MapCondition(resumo string) string {
	lower := strings.ToLower(resumo)
	for _, m := range conditionMap {
		if strings.Contains(lower, m.substr) {
			return m.condition
		}
	}
	return ""
}

// MapTrend maps INMET's temperature tendency text ("Ligeira Elevação",
// "Estável", "Declínio") to a Trend.
func MapTrend(tendency string) models.Trend {
	lower := strings.ToLower(tendency)
	switch {
	case strings.Contains(lower, "elev"):
		return models.TrendRising
	case strings.Contains(lower, "decl"), strings.Contains(lower, "queda"):
		return models.TrendFalling
	case strings.Contains(lower, "estav"), strings.Contains(lower, "estáv"):
		return models.TrendStable
	default:
		return models.TrendUnknown
	}
}

// ConditionAt picks the condition of the forecast period covering the given
// instant. Used to backfill the current condition code, which the
// observations endpoint does not carry.
func ConditionAt(periods []models.ForecastPeriod, at time.Time) string {
	want := periodOf(at.Hour())
	year, month, day := at.Date()

	var sameDay string
	for _, p := range periods {
		py, pm, pd := p.Date.Date()
		if py != year || pm != month || pd != day {
			continue
		}
		if p.Period == want && p.Condition != "" {
			return p.Condition
		}
		if sameDay == "" && p.Condition != "" {
			sameDay = p.Condition
		}
	}
	return sameDay
}

func periodOf(hour int) models.Period {
	switch {
	case hour < 12:
		return models.PeriodMorning
	case hour < 18:
		return models.PeriodAfternoon
	default:
		return models.PeriodEvening
	}
}

func periodRank(p models.Period) int {
	switch p {
	case models.PeriodMorning:
		return 0
	case models.PeriodAfternoon:
		return 1
	default:
		return 2
	}
}

// floatField reads an observation value that INMET may encode as a string or
// a number. Missing or unparsable values map to nil.
func floatField(dados map[string]interface{}, key string) *float64 {
	v, ok := dados[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func stringField(dados map[string]interface{}, key string) string {
	if v, ok := dados[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// observationTime combines DT_MEDICAO ("2025-10-17") and HR_MEDICAO ("1600",
// UTC) into a timestamp. Unparsable inputs yield the zero time.
func observationTime(date, hour string) time.Time {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}

	if len(hour) < 3 || len(hour) > 4 {
		return d
	}
	h, err := strconv.Atoi(hour[:len(hour)-2])
	if err != nil {
		return d
	}
	m, err := strconv.Atoi(hour[len(hour)-2:])
	if err != nil {
		return d
	}

	return d.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

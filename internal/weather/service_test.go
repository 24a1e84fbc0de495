package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zanaca/ha-inmet-weather/internal/api"
	"github.com/zanaca/ha-inmet-weather/internal/geo"
	"github.com/zanaca/ha-inmet-weather/internal/models"
	"github.com/zanaca/ha-inmet-weather/internal/normalize"
)

// testBackend serves INMET-shaped payloads with a forecast covering today, so
// the current condition backfill has a period to pick from.
func testBackend(t *testing.T) *httptest.Server {
	t.Helper()

	today := time.Now().UTC().Format("02/01/2006")
	forecast := fmt.Sprintf(`{
		"3304557": {
			"%s": {
				"manha": {"uf": "RJ", "resumo": "Poucas nuvens", "temp_max": 27, "temp_min": 19,
					"dir_vento": "N", "int_vento": "Fracos", "umidade_max": 90, "umidade_min": 60,
					"temp_max_tende": "Estável", "temp_min_tende": "Estável", "cod_icone": "2"},
				"tarde": {"uf": "RJ", "resumo": "Poucas nuvens", "temp_max": 30, "temp_min": 20,
					"dir_vento": "N-NE", "int_vento": "Fracos", "umidade_max": 85, "umidade_min": 55,
					"temp_max_tende": "Estável", "temp_min_tende": "Estável", "cod_icone": "2"},
				"noite": {"uf": "RJ", "resumo": "Poucas nuvens", "temp_max": 24, "temp_min": 19,
					"dir_vento": "E", "int_vento": "Fracos", "umidade_max": 95, "umidade_min": 65,
					"temp_max_tende": "Declínio", "temp_min_tende": "Estável", "cod_icone": "2"}
			}
		}
	}`, today)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/estacao/proxima/"):
			w.Write([]byte(`{
				"estacao": {"CODIGO": "A652", "NOME": "FORTE DE COPACABANA", "GEOCODE": "3304557"},
				"dados": {"TEM_INS": "29", "UMD_INS": "70", "VEN_RAJ": "7.5",
					"DT_MEDICAO": "2025-10-17", "HR_MEDICAO": "1600"}
			}`))
		case strings.HasPrefix(r.URL.Path, "/previsao/"):
			w.Write([]byte(forecast))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestService(baseURL string) *Service {
	return NewService(geo.NewStationTable(), api.NewClientWithBaseURL(baseURL))
}

var rioCoords = models.Coordinates{Latitude: -22.91, Longitude: -43.17}

func TestResolve(t *testing.T) {
	svc := newTestService("http://unused")

	ref := svc.Resolve(rioCoords)
	if ref.Geocode != "3304557" {
		t.Errorf("Expected geocode 3304557, got %s", ref.Geocode)
	}
}

func TestGetCurrent(t *testing.T) {
	ts := testBackend(t)
	defer ts.Close()

	svc := newTestService(ts.URL)
	cur, err := svc.GetCurrent(context.Background(), rioCoords)
	if err != nil {
		t.Fatalf("GetCurrent() error = %v", err)
	}

	if cur.StationCode != "A652" {
		t.Errorf("Expected station code A652, got %s", cur.StationCode)
	}
	if cur.Temperature == nil || *cur.Temperature != 29 {
		t.Error("Expected temperature 29")
	}
	if cur.Geocode != "3304557" {
		t.Errorf("Expected geocode 3304557, got %s", cur.Geocode)
	}
}

func TestGetForecast(t *testing.T) {
	ts := testBackend(t)
	defer ts.Close()

	svc := newTestService(ts.URL)
	periods, err := svc.GetForecast(context.Background(), rioCoords)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	if len(periods) != 3 {
		t.Fatalf("Expected 3 forecast periods, got %d", len(periods))
	}
	if periods[0].Period != models.PeriodMorning {
		t.Errorf("Expected first period morning, got %s", periods[0].Period)
	}
}

func TestGetSnapshot(t *testing.T) {
	ts := testBackend(t)
	defer ts.Close()

	svc := newTestService(ts.URL)
	snap, err := svc.GetSnapshot(context.Background(), "rio", rioCoords)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	if snap.Location != "rio" {
		t.Errorf("Expected location 'rio', got %s", snap.Location)
	}
	if snap.Geocode != "3304557" {
		t.Errorf("Expected geocode 3304557, got %s", snap.Geocode)
	}
	if len(snap.Forecast) != 3 {
		t.Errorf("Expected 3 forecast periods, got %d", len(snap.Forecast))
	}
	if snap.FetchedAt.IsZero() {
		t.Error("Expected FetchedAt to be set")
	}

	// Observations carry no condition text; it comes from the forecast
	if snap.Current.Condition != "partlycloudy" {
		t.Errorf("Expected backfilled condition 'partlycloudy', got %q", snap.Current.Condition)
	}
}

func TestGetSnapshot_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse all connections

	svc := newTestService(ts.URL)
	_, err := svc.GetSnapshot(context.Background(), "rio", rioCoords)
	if err == nil {
		t.Fatal("Expected error for unreachable backend, got nil")
	}

	var netErr *api.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *api.NetworkError, got %T: %v", err, err)
	}
}

func TestGetSnapshot_MalformedCurrent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/estacao/proxima/"):
			w.Write([]byte(`{"unexpected": true}`))
		default:
			w.Write([]byte(`{"3304557": {"17/10/2025": {"manha": {"uf": "RJ", "resumo": "Chuva"}}}}`))
		}
	}))
	defer ts.Close()

	svc := newTestService(ts.URL)
	_, err := svc.GetSnapshot(context.Background(), "rio", rioCoords)
	if err == nil {
		t.Fatal("Expected error for malformed current payload, got nil")
	}

	var fmtErr *normalize.DataFormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("Expected *normalize.DataFormatError, got %T: %v", err, err)
	}
}

package geo

import (
	"math"

	"github.com/zanaca/ha-inmet-weather/internal/models"
)

const earthRadiusKm = 6371.0

// capitals is the static reference table of Brazilian state capitals with
// their IBGE geocodes. Table order is the tie-break for equidistant lookups,
// so keep it stable.
var capitals = []models.StationReference{
	{Geocode: "1100205", Name: "Porto Velho", Latitude: -8.7608, Longitude: -63.8999},
	{Geocode: "1200401", Name: "Rio Branco", Latitude: -9.9750, Longitude: -67.8243},
	{Geocode: "1302603", Name: "Manaus", Latitude: -3.1187, Longitude: -60.0212},
	{Geocode: "1400100", Name: "Boa Vista", Latitude: 2.8238, Longitude: -60.6753},
	{Geocode: "1501402", Name: "Belém", Latitude: -1.4550, Longitude: -48.5024},
	{Geocode: "1600303", Name: "Macapá", Latitude: 0.0349, Longitude: -51.0694},
	{Geocode: "1721000", Name: "Palmas", Latitude: -10.1689, Longitude: -48.3317},
	{Geocode: "2111300", Name: "São Luís", Latitude: -2.5387, Longitude: -44.2825},
	{Geocode: "2211001", Name: "Teresina", Latitude: -5.0892, Longitude: -42.8016},
	{Geocode: "2304400", Name: "Fortaleza", Latitude: -3.7166, Longitude: -38.5423},
	{Geocode: "2408102", Name: "Natal", Latitude: -5.7945, Longitude: -35.2110},
	{Geocode: "2507507", Name: "João Pessoa", Latitude: -7.1151, Longitude: -34.8641},
	{Geocode: "2611606", Name: "Recife", Latitude: -8.0467, Longitude: -34.8771},
	{Geocode: "2704302", Name: "Maceió", Latitude: -9.6660, Longitude: -35.7350},
	{Geocode: "2800308", Name: "Aracaju", Latitude: -10.9472, Longitude: -37.0731},
	{Geocode: "2927408", Name: "Salvador", Latitude: -12.9718, Longitude: -38.5011},
	{Geocode: "3106200", Name: "Belo Horizonte", Latitude: -19.9102, Longitude: -43.9266},
	{Geocode: "3205309", Name: "Vitória", Latitude: -20.3155, Longitude: -40.3128},
	{Geocode: "3304557", Name: "Rio de Janeiro", Latitude: -22.9068, Longitude: -43.1729},
	{Geocode: "3550308", Name: "São Paulo", Latitude: -23.5505, Longitude: -46.6333},
	{Geocode: "4106902", Name: "Curitiba", Latitude: -25.4284, Longitude: -49.2733},
	{Geocode: "4205407", Name: "Florianópolis", Latitude: -27.5945, Longitude: -48.5477},
	{Geocode: "4314902", Name: "Porto Alegre", Latitude: -30.0331, Longitude: -51.2300},
	{Geocode: "5002704", Name: "Campo Grande", Latitude: -20.4428, Longitude: -54.6464},
	{Geocode: "5103403", Name: "Cuiabá", Latitude: -15.6010, Longitude: -56.0974},
	{Geocode: "5208707", Name: "Goiânia", Latitude: -16.6864, Longitude: -49.2643},
	{Geocode: "5300108", Name: "Brasília", Latitude: -15.7939, Longitude: -47.8828},
}

// StationTable is the immutable municipality reference table, constructed
// once at startup and shared by reference.
type StationTable struct {
	stations []models.StationReference
}

// NewStationTable builds the reference table.
func NewStationTable() *StationTable {
	return &StationTable{stations: capitals}
}

// Stations returns a copy of the table entries in table order.
func (t *StationTable) Stations() []models.StationReference {
	out := make([]models.StationReference, len(t.stations))
	copy(out, t.stations)
	return out
}

// Nearest returns the table entry with the smallest haversine distance to the
// given coordinates. The table is never empty so a result always exists; ties
// keep the first minimum in table order.
func (t *StationTable) Nearest(latitude, longitude float64) models.StationReference {
	best := t.stations[0]
	bestDistance := Distance(latitude, longitude, best.Latitude, best.Longitude)

	for _, ref := range t.stations[1:] {
		d := Distance(latitude, longitude, ref.Latitude, ref.Longitude)
		if d < bestDistance {
			best = ref
			bestDistance = d
		}
	}

	return best
}

// Distance calculates the distance in kilometers between two coordinates
// using the Haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// InBrazil reports whether the coordinates fall inside Brazil's bounding box
// (IBGE southern/northern and western/eastern boundaries). Advisory only:
// resolution still succeeds for coordinates outside it.
func InBrazil(latitude, longitude float64) bool {
	return latitude >= -33.75 && latitude <= 5.27 &&
		longitude >= -73.99 && longitude <= -28.83
}

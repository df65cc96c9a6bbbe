package format

import (
	"fmt"
	"strconv"
)

// StateVector — одна позиция воздушного объекта.
//
// Поля соответствуют минимальному общему знаменателю фидов ADS-B
// и дрон-телеметрии: момент наблюдения, идентификатор борта,
// координаты и кинематика.
type StateVector struct {
	// Time — момент наблюдения, unix seconds.
	Time int64 `json:"time"`

	// Icao24 — 24-битный адрес транспондера (hex) либо ID дрона.
	Icao24 string `json:"icao24"`

	// Callsign — позывной. Может быть пустым.
	Callsign string `json:"callsign,omitempty"`

	// Lat, Lon — координаты в градусах WGS84.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Alt — геометрическая высота, метры.
	Alt float64 `json:"alt"`

	// Speed — путевая скорость, м/с.
	Speed float64 `json:"speed"`

	// Heading — путевой угол, градусы от истинного севера.
	Heading float64 `json:"heading"`

	// VRate — вертикальная скорость, м/с. Отрицательная — снижение.
	VRate float64 `json:"vrate"`
}

// csvHeader — порядок колонок CSV представления.
var csvHeader = []string{
	"time", "icao24", "callsign", "lat", "lon", "alt", "speed", "heading", "vrate",
}

// record сериализует вектор в CSV запись.
func (v StateVector) record() []string {
	return []string{
		strconv.FormatInt(v.Time, 10),
		v.Icao24,
		v.Callsign,
		formatFloat(v.Lat),
		formatFloat(v.Lon),
		formatFloat(v.Alt),
		formatFloat(v.Speed),
		formatFloat(v.Heading),
		formatFloat(v.VRate),
	}
}

// vectorFromRecord разбирает CSV запись в вектор.
func vectorFromRecord(rec []string) (StateVector, error) {
	if len(rec) != len(csvHeader) {
		return StateVector{}, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(rec))
	}

	var v StateVector
	var err error

	if v.Time, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
		return StateVector{}, fmt.Errorf("time %q: %w", rec[0], err)
	}
	v.Icao24 = rec[1]
	if v.Icao24 == "" {
		return StateVector{}, fmt.Errorf("empty icao24")
	}
	v.Callsign = rec[2]

	floats := []struct {
		dst  *float64
		name string
		raw  string
	}{
		{&v.Lat, "lat", rec[3]},
		{&v.Lon, "lon", rec[4]},
		{&v.Alt, "alt", rec[5]},
		{&v.Speed, "speed", rec[6]},
		{&v.Heading, "heading", rec[7]},
		{&v.VRate, "vrate", rec[8]},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(f.raw, 64); err != nil {
			return StateVector{}, fmt.Errorf("%s %q: %w", f.name, f.raw, err)
		}
	}

	return v, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

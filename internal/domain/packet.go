package domain

import (
	"fmt"
	"time"
)

// Format — формат полезной нагрузки пакета.
type Format string

const (
	// FormatRaw — неинтерпретированные байты, как пришли из источника.
	FormatRaw Format = "raw"

	// FormatCSV — строки CSV с заголовком (state vectors).
	FormatCSV Format = "csv"

	// FormatJSON — массив JSON-объектов.
	FormatJSON Format = "json"
)

// ParseFormat парсит строку в Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatRaw, FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format: %q", s)
	}
}

// Packet — одна порция данных наблюдения, проходящая через pipeline.
//
// Пакеты передаются по значению через каналы между стадиями.
// Payload никогда не модифицируется на месте: фильтр, меняющий данные,
// возвращает новый Packet.
type Packet struct {
	// Source — имя site, откуда пришли данные.
	Source string `json:"source"`

	// Format — текущий формат Payload.
	Format Format `json:"format"`

	// Payload — данные пакета.
	Payload []byte `json:"payload"`

	// TS — момент получения пакета из источника.
	TS time.Time `json:"ts"`
}

// Size возвращает размер полезной нагрузки в байтах.
func (p Packet) Size() int {
	return len(p.Payload)
}

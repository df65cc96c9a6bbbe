package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shaiso/skyfetch/internal/domain"
)

// Converter преобразует полезную нагрузку пакетов между форматами.
// Потокобезопасен: не имеет изменяемого состояния кроме логгера.
type Converter struct {
	logger *slog.Logger
}

// NewConverter создаёт Converter.
func NewConverter(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{logger: logger.With("component", "converter")}
}

// Convert возвращает пакет с нагрузкой в формате to.
//
// Преобразование в текущий формат пакета тождественно. Формат raw
// по соглашению содержит CSV текст источника: raw→csv проверяет
// заголовок и перемаркирует пакет, raw→json парсит и сериализует.
func (c *Converter) Convert(pkt domain.Packet, to domain.Format) (domain.Packet, error) {
	if pkt.Format == to {
		return pkt, nil
	}

	vectors, err := c.decode(pkt)
	if err != nil {
		return domain.Packet{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	payload, err := encode(vectors, to)
	if err != nil {
		return domain.Packet{}, err
	}

	out := pkt
	out.Format = to
	out.Payload = payload
	return out, nil
}

// decode разбирает нагрузку пакета в векторы.
func (c *Converter) decode(pkt domain.Packet) ([]StateVector, error) {
	switch pkt.Format {
	case domain.FormatCSV, domain.FormatRaw:
		return DecodeCSV(pkt.Payload)
	case domain.FormatJSON:
		return DecodeJSON(pkt.Payload)
	default:
		return nil, fmt.Errorf("unknown packet format %q", pkt.Format)
	}
}

// encode сериализует векторы в формат to.
func encode(vectors []StateVector, to domain.Format) ([]byte, error) {
	switch to {
	case domain.FormatCSV:
		return EncodeCSV(vectors)
	case domain.FormatJSON:
		return EncodeJSON(vectors)
	case domain.FormatRaw:
		// raw — формат источника; назад в него не конвертируем.
		return nil, fmt.Errorf("cannot convert to raw")
	default:
		return nil, fmt.Errorf("unknown target format %q", to)
	}
}

// DecodeCSV разбирает CSV с заголовком в векторы.
func DecodeCSV(data []byte) ([]StateVector, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrBadHeader)
	}

	header := records[0]
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("%w: %d columns", ErrBadHeader, len(header))
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i, header[i], col)
		}
	}

	vectors := make([]StateVector, 0, len(records)-1)
	for i, rec := range records[1:] {
		v, err := vectorFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

// EncodeCSV сериализует векторы в CSV с заголовком.
func EncodeCSV(vectors []StateVector) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, v := range vectors {
		if err := w.Write(v.record()); err != nil {
			return nil, fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeJSON разбирает JSON массив в векторы.
func DecodeJSON(data []byte) ([]StateVector, error) {
	var vectors []StateVector
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}
	return vectors, nil
}

// EncodeJSON сериализует векторы в JSON массив.
func EncodeJSON(vectors []StateVector) ([]byte, error) {
	data, err := json.Marshal(vectors)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return data, nil
}

package task

import (
	"context"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/format"
)

// convertTask — преобразование пакета в другой формат.
type convertTask struct {
	to   domain.Format
	conv *format.Converter
}

func (t *convertTask) Kind() domain.Kind { return domain.KindConvert }

func (t *convertTask) Process(ctx context.Context, pkt domain.Packet) (domain.Packet, error) {
	return t.conv.Convert(pkt, t.to)
}

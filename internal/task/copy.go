package task

import (
	"context"

	"github.com/shaiso/skyfetch/internal/domain"
)

// copyTask — передача пакета без изменений.
type copyTask struct{}

func (t *copyTask) Kind() domain.Kind { return domain.KindCopy }

func (t *copyTask) Process(ctx context.Context, pkt domain.Packet) (domain.Packet, error) {
	return pkt, nil
}

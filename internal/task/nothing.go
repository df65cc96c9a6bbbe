package task

import (
	"context"

	"github.com/shaiso/skyfetch/internal/domain"
)

// nothingTask — no-op. Используется в тестах pipeline и как заглушка
// при отладке заданий.
type nothingTask struct{}

func (t *nothingTask) Kind() domain.Kind { return domain.KindNothing }

func (t *nothingTask) Process(ctx context.Context, pkt domain.Packet) (domain.Packet, error) {
	return pkt, nil
}

package task

import (
	"context"
	"fmt"

	"github.com/shaiso/skyfetch/internal/domain"
)

// storeTask — вставка пакетов в базу данных.
type storeTask struct {
	db   PacketWriter
	area string
	n    int
}

func (t *storeTask) Kind() domain.Kind { return domain.KindStore }

func (t *storeTask) Consume(ctx context.Context, pkt domain.Packet) error {
	if err := t.db.InsertPacket(ctx, t.area, pkt); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	t.n++
	return nil
}

func (t *storeTask) Output() string {
	return fmt.Sprintf("db:%s (%d packets)", t.area, t.n)
}

package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shaiso/skyfetch/internal/domain"
)

// messageTask — передача с логированием сообщения. Сообщение пишется
// один раз, на первом пакете; дальше только счёт на уровне Debug.
type messageTask struct {
	msg    string
	logger *slog.Logger
	once   sync.Once
}

func (t *messageTask) Kind() domain.Kind { return domain.KindMessage }

func (t *messageTask) Process(ctx context.Context, pkt domain.Packet) (domain.Packet, error) {
	t.once.Do(func() {
		t.logger.Info(t.msg, "source", pkt.Source)
	})
	t.logger.Debug("packet passed", "message", t.msg, "bytes", pkt.Size())
	return pkt, nil
}

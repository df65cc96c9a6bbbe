package task

import (
	"context"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/source"
)

// streamTask — непрерывный поток из источника. Завершается только
// отменой задания (или сбоем источника).
type streamTask struct {
	src source.Source
}

func (t *streamTask) Kind() domain.Kind { return domain.KindStream }

func (t *streamTask) Generate(ctx context.Context, out chan<- domain.Packet) error {
	return t.src.Stream(ctx, out)
}

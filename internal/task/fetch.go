package task

import (
	"context"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/source"
)

// fetchTask — разовая выборка из источника.
type fetchTask struct {
	src source.Source
}

func (t *fetchTask) Kind() domain.Kind { return domain.KindFetch }

func (t *fetchTask) Generate(ctx context.Context, out chan<- domain.Packet) error {
	return t.src.Fetch(ctx, out)
}

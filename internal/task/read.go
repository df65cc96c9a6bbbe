package task

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shaiso/skyfetch/internal/domain"
)

// readTask — чтение локального файла одним пакетом.
// В отличие от file-источника, путь задаётся прямо в задании.
type readTask struct {
	path   string
	format domain.Format
}

func (t *readTask) Kind() domain.Kind { return domain.KindRead }

func (t *readTask) Generate(ctx context.Context, out chan<- domain.Packet) error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", t.path, err)
	}

	pkt := domain.Packet{
		Source:  "read:" + t.path,
		Format:  t.format,
		Payload: data,
		TS:      time.Now(),
	}

	select {
	case out <- pkt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

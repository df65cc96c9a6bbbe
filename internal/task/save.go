package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shaiso/skyfetch/internal/domain"
)

// saveTask — запись всех пакетов в один выходной файл по явному пути.
type saveTask struct {
	out  string
	file *os.File
	n    int
}

func (t *saveTask) Kind() domain.Kind { return domain.KindSave }

func (t *saveTask) Consume(ctx context.Context, pkt domain.Packet) error {
	if t.file == nil {
		if err := os.MkdirAll(filepath.Dir(t.out), 0o755); err != nil {
			return fmt.Errorf("save: %w", err)
		}
		file, err := os.Create(t.out)
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		t.file = file
	}

	if _, err := t.file.Write(pkt.Payload); err != nil {
		return fmt.Errorf("save %s: %w", t.out, err)
	}
	t.n++
	return nil
}

func (t *saveTask) Close() error {
	if t.file == nil {
		return nil
	}
	if err := t.file.Close(); err != nil {
		return fmt.Errorf("save %s: %w", t.out, err)
	}
	return nil
}

func (t *saveTask) Output() string {
	return t.out
}

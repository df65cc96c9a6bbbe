package task

import (
	"context"
	"fmt"
	"os"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/storage"
)

// recordTask — дозапись потока пакетов в файл области.
// В отличие от save, файл не обнуляется: повторные задания с тем же
// name= продолжают ту же запись.
type recordTask struct {
	fs   *storage.Fs
	area string
	name string

	file *os.File
	path string
	n    int
}

func (t *recordTask) Kind() domain.Kind { return domain.KindRecord }

func (t *recordTask) Consume(ctx context.Context, pkt domain.Packet) error {
	if t.file == nil {
		file, path, err := t.fs.OpenAppend(t.area, t.name)
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		t.file = file
		t.path = path
	}

	if _, err := t.file.Write(pkt.Payload); err != nil {
		return fmt.Errorf("record %s: %w", t.path, err)
	}
	t.n++
	return nil
}

func (t *recordTask) Close() error {
	if t.file == nil {
		return nil
	}
	if err := t.file.Close(); err != nil {
		return fmt.Errorf("record %s: %w", t.path, err)
	}
	return nil
}

func (t *recordTask) Output() string {
	return t.path
}

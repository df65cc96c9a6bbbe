package task

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/storage"
)

// archiveTask — запись пакетов в gzip архив области.
// Архив открывается лениво и дописывается потоково: память не зависит
// от объёма задания.
type archiveTask struct {
	fs   *storage.Fs
	area string
	name string

	file *os.File
	zw   *gzip.Writer
	path string
}

func (t *archiveTask) Kind() domain.Kind { return domain.KindArchive }

func (t *archiveTask) Consume(ctx context.Context, pkt domain.Packet) error {
	if t.zw == nil {
		file, path, err := t.fs.Create(t.area, t.name+".gz")
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		t.file = file
		t.path = path
		t.zw = gzip.NewWriter(file)
	}

	if _, err := t.zw.Write(pkt.Payload); err != nil {
		return fmt.Errorf("archive %s: %w", t.path, err)
	}
	return nil
}

// Close сбрасывает gzip буфер и закрывает файл. Ошибка здесь означает
// недописанный архив и репортится как сбой задачи.
func (t *archiveTask) Close() error {
	if t.zw == nil {
		return nil
	}

	var errs []error
	if err := t.zw.Close(); err != nil {
		errs = append(errs, fmt.Errorf("flush gzip %s: %w", t.path, err))
	}
	if err := t.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", t.path, err))
	}
	return errors.Join(errs...)
}

func (t *archiveTask) Output() string {
	return t.path
}

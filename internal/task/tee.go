package task

import (
	"context"
	"fmt"
	"os"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/storage"
)

// teeTask — передача пакета дальше с копией нагрузки в файл области.
// Файл открывается лениво, на первом пакете, и закрывается Runner'ом.
type teeTask struct {
	fs   *storage.Fs
	area string
	name string

	file *os.File
	path string
}

func (t *teeTask) Kind() domain.Kind { return domain.KindTee }

func (t *teeTask) Process(ctx context.Context, pkt domain.Packet) (domain.Packet, error) {
	if t.file == nil {
		file, path, err := t.fs.OpenAppend(t.area, t.name)
		if err != nil {
			return domain.Packet{}, fmt.Errorf("tee: %w", err)
		}
		t.file = file
		t.path = path
	}

	if _, err := t.file.Write(pkt.Payload); err != nil {
		return domain.Packet{}, fmt.Errorf("tee %s: %w", t.path, err)
	}

	return pkt, nil
}

func (t *teeTask) Close() error {
	if t.file == nil {
		return nil
	}
	if err := t.file.Close(); err != nil {
		return fmt.Errorf("tee %s: %w", t.path, err)
	}
	return nil
}

package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shaiso/skyfetch/internal/domain"
)

// fileSource — чтение локального файла одним пакетом.
type fileSource struct {
	site   Site
	logger *slog.Logger
}

func (s *fileSource) Site() Site { return s.site }

func (s *fileSource) Fetch(ctx context.Context, out chan<- domain.Packet) error {
	data, err := os.ReadFile(s.site.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.site.Path, err)
	}

	s.logger.Info("file read", "path", s.site.Path, "bytes", len(data))

	pkt := domain.Packet{
		Source:  s.site.Name,
		Format:  s.site.Format,
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

func (s *fileSource) Stream(ctx context.Context, out chan<- domain.Packet) error {
	return fmt.Errorf("site %s: %w", s.site.Name, ErrNotStreamable)
}

package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaiso/skyfetch/internal/domain"
)

// httpSource — разовая выборка по HTTP GET.
// Весь ответ уходит одним пакетом.
type httpSource struct {
	site   Site
	client *http.Client
	logger *slog.Logger
}

func (s *httpSource) Site() Site { return s.site }

func (s *httpSource) Fetch(ctx context.Context, out chan<- domain.Packet) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.site.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if s.site.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.site.Token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", s.site.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", s.site.Name, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	s.logger.Info("site fetched",
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	pkt := domain.Packet{
		Source:  s.site.Name,
		Format:  s.site.Format,
		Payload: body,
		TS:      time.Now(),
	}

	select {
	case out <- pkt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *httpSource) Stream(ctx context.Context, out chan<- domain.Packet) error {
	return fmt.Errorf("site %s: %w", s.site.Name, ErrNotStreamable)
}

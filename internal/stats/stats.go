package stats

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/skyfetch/internal/domain"
)

// Stats — агрегатор счётчиков по заданиям.
// Реализует runner.StatsSink. Потокобезопасен.
type Stats struct {
	logger *slog.Logger

	mu   sync.RWMutex
	jobs map[uuid.UUID]domain.Counters
}

// New создаёт Stats.
func New(logger *slog.Logger) *Stats {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stats{
		logger: logger.With("actor", "stats"),
		jobs:   make(map[uuid.UUID]domain.Counters),
	}
}

// Add прибавляет инкремент к счётчикам задания и метрикам процесса.
func (s *Stats) Add(id uuid.UUID, c domain.Counters) {
	s.mu.Lock()
	agg := s.jobs[id]
	agg.Add(c)
	s.jobs[id] = agg
	s.mu.Unlock()

	if c.Packets > 0 {
		packetsTotal.Add(float64(c.Packets))
	}
	if c.Bytes > 0 {
		bytesTotal.WithLabelValues("in").Add(float64(c.Bytes))
	}
	if c.BytesOut > 0 {
		bytesTotal.WithLabelValues("out").Add(float64(c.BytesOut))
	}
	if c.Errors > 0 {
		taskErrorsTotal.Add(float64(c.Errors))
	}
}

// Snapshot возвращает текущие счётчики задания.
// Второе значение false, если по заданию ничего не приходило.
func (s *Stats) Snapshot(id uuid.UUID) (domain.Counters, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.jobs[id]
	return c, ok
}

// All возвращает копию счётчиков всех заданий.
func (s *Stats) All() map[uuid.UUID]domain.Counters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]domain.Counters, len(s.jobs))
	for id, c := range s.jobs {
		out[id] = c
	}
	return out
}

// Forget убирает счётчики задания (после выгрузки финальной записи).
func (s *Stats) Forget(id uuid.UUID) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

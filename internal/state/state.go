package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped — актор остановлен, записи не принимаются.
var ErrStopped = errors.New("state stopped")

// Sink — персистентный приёмник записей состояния.
// Реализуется repo.StateRepo.
type Sink interface {
	Upsert(ctx context.Context, tag string, payload []byte) error
}

// State — актор tag → payload. См. doc.go.
type State struct {
	sink   Sink
	logger *slog.Logger

	cmds      chan recordCmd
	closeOnce sync.Once
	closed    chan struct{}

	mu      sync.RWMutex
	entries map[string][]byte
}

type recordCmd struct {
	tag     string
	payload []byte
	reply   chan struct{}
}

// New создаёт State. sink может быть nil.
func New(sink Sink, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		sink:    sink,
		logger:  logger.With("actor", "state"),
		cmds:    make(chan recordCmd, 64),
		closed:  make(chan struct{}),
		entries: make(map[string][]byte),
	}
}

// Run — цикл записей. Блокирует до отмены ctx.
// Все мутации entries происходят здесь: при конкурирующих записях
// одного тега выигрывает последняя принятая.
func (s *State) Run(ctx context.Context) error {
	s.logger.Info("state started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("state stopped", "entries", len(s.entries))
			return nil
		case cmd := <-s.cmds:
			s.record(ctx, cmd)
		}
	}
}

// record применяет одну запись и дублирует её в sink.
func (s *State) record(ctx context.Context, cmd recordCmd) {
	s.mu.Lock()
	s.entries[cmd.tag] = cmd.payload
	s.mu.Unlock()

	if s.sink != nil {
		if err := s.sink.Upsert(ctx, cmd.tag, cmd.payload); err != nil {
			s.logger.Warn("state sink failed", "tag", cmd.tag, "error", err)
		}
	}

	close(cmd.reply)
}

// Close закрывает актор для новых записей.
func (s *State) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Record записывает payload под тегом и ждёт применения.
func (s *State) Record(tag string, payload []byte) error {
	reply := make(chan struct{})
	cmd := recordCmd{tag: tag, payload: append([]byte(nil), payload...), reply: reply}

	select {
	case <-s.closed:
		return ErrStopped
	default:
	}

	select {
	case s.cmds <- cmd:
	case <-s.closed:
		return ErrStopped
	}

	select {
	case <-reply:
		return nil
	case <-s.closed:
		// Актор остановлен до применения записи.
		return ErrStopped
	}
}

// Get возвращает payload по тегу. Второе значение false, если тега нет.
func (s *State) Get(tag string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.entries[tag]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), payload...), true
}

// Tags возвращает все известные теги.
func (s *State) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]string, 0, len(s.entries))
	for tag := range s.entries {
		tags = append(tags, tag)
	}
	return tags
}

package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/skyfetch/internal/domain"
)

// Engine — операции engine, нужные API. Реализуется supervisor.Supervisor.
type Engine interface {
	Submit(text string) (*domain.Job, error)
	Job(id uuid.UUID) (*domain.Job, error)
	Result(id uuid.UUID) (*domain.JobResult, error)
	Cancel(id uuid.UUID) error
	List() ([]*domain.Job, error)
	Kinds() []domain.KindInfo
	Counters(id uuid.UUID) (domain.Counters, bool)
	CountersAll() map[uuid.UUID]domain.Counters
	StateGet(tag string) ([]byte, bool)
	StateTags() []string
	QueueLens() (waiting, running, finished int, err error)
}

// Journal — журнал финальных заданий в БД. Реализуется repo.JobRepo.
// Необязателен: без базы маршруты журнала отвечают 503.
type Journal interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Job, error)
}

// Areas — статистика областей хранения в БД. Реализуется repo.PacketRepo.
// Необязателен: без базы маршрут областей отвечает 503.
type Areas interface {
	CountByArea(ctx context.Context, area string) (int64, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	engine  Engine
	journal Journal
	areas   Areas
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Engine  Engine
	Journal Journal
	Areas   Areas
	Logger  *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:  cfg.Engine,
		journal: cfg.Journal,
		areas:   cfg.Areas,
		logger:  logger,
	}
}

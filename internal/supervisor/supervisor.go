package supervisor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/pipeline"
	"github.com/shaiso/skyfetch/internal/runner"
	"github.com/shaiso/skyfetch/internal/sched"
	"github.com/shaiso/skyfetch/internal/state"
	"github.com/shaiso/skyfetch/internal/stats"
	"github.com/shaiso/skyfetch/internal/telemetry"
)

// restartDelay — пауза перед перезапуском упавшего актора.
const restartDelay = time.Second

// JobSink — журнал финальных заданий. Реализуется repo.JobRepo.
type JobSink interface {
	SaveResult(ctx context.Context, job *domain.Job) error
}

// Config — конфигурация Supervisor.
type Config struct {
	// MaxWorkers — лимит одновременно выполняющихся заданий.
	MaxWorkers int

	// Tick — интервал тика планировщика.
	Tick time.Duration

	// Factory — фабрика задач pipeline.
	Factory pipeline.Factory

	// Jobs — журнал финальных заданий. Может быть nil.
	Jobs JobSink

	// StateSink — персистентный приёмник State. Может быть nil.
	StateSink state.Sink

	// Logger
	Logger *slog.Logger
}

// Supervisor — фасад engine. См. doc.go.
type Supervisor struct {
	factory pipeline.Factory
	jobs    JobSink
	logger  *slog.Logger

	sched *sched.Scheduler
	state *state.State
	stats *stats.Stats

	hState actorHandle
	hSched actorHandle
}

// actorHandle — управление одним запущенным актором.
type actorHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (h actorHandle) stop() {
	h.cancel()
	<-h.done
}

// New создаёт Supervisor.
func New(cfg Config) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Supervisor{
		factory: cfg.Factory,
		jobs:    cfg.Jobs,
		logger:  logger.With("actor", "supervisor"),
		state:   state.New(cfg.StateSink, logger),
		stats:   stats.New(logger),
	}

	s.sched = sched.New(sched.Config{
		Tick:       cfg.Tick,
		MaxWorkers: cfg.MaxWorkers,
		Runner:     s.runJob,
		OnFinished: s.onFinished,
		Logger:     logger,
	})

	return s
}

// Start запускает акторы. Не блокирует; остановка — через Stop.
func (s *Supervisor) Start(ctx context.Context) {
	s.hState = s.supervise(ctx, "state", s.state.Run)
	s.hSched = s.supervise(ctx, "scheduler", s.sched.Run)

	s.logger.Info("engine started")
}

// Stop останавливает акторы в обратном порядке запуска.
// Планировщик дорабатывает выполняющиеся задания и останавливается
// первым: State должен жить, пока идут финальные записи.
func (s *Supervisor) Stop() {
	s.sched.Close()
	s.hSched.stop()

	s.state.Close()
	s.hState.stop()

	s.logger.Info("engine stopped")
}

// supervise запускает актор под присмотром: паника логируется,
// актор перезапускается, пока его ctx жив (one-for-one).
func (s *Supervisor) supervise(ctx context.Context, name string, run func(ctx context.Context) error) actorHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := actorHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		for {
			s.runActor(ctx, name, run)
			if ctx.Err() != nil {
				return
			}

			s.logger.Warn("actor restarting", "name", name, "delay", restartDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(restartDelay):
			}
		}
	}()

	return h
}

// runActor выполняет один заход актора, перехватывая панику.
func (s *Supervisor) runActor(ctx context.Context, name string, run func(ctx context.Context) error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("actor crashed", "name", name, "panic", p)
		}
	}()

	if err := run(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("actor exited", "name", name, "error", err)
	}
}

// Submit разбирает текст задания, проверяет топологию и ставит его
// в очередь: CREATED → READY → QUEUED. Невалидное задание отклоняется
// до очереди; ошибка — pipeline.ValidationError или ошибка синтаксиса.
func (s *Supervisor) Submit(text string) (*domain.Job, error) {
	job := domain.NewJob(text)
	logger := telemetry.WithJobID(s.logger, job.ID.String())

	specs, err := pipeline.Parse(text)
	if err != nil {
		logger.Warn("job rejected", "error", err)
		return nil, err
	}

	// Пробная сборка: ловит плохую топологию и плохие параметры
	// (неизвестный site, кривой формат) до постановки в очередь.
	if _, err := pipeline.Build(specs, s.factory); err != nil {
		logger.Warn("job rejected", "error", err)
		return nil, err
	}

	job.MarkReady(specs)
	queued, err := s.sched.Submit(job)
	if err != nil {
		return nil, err
	}

	logger.Info("job accepted", "tasks", len(specs))
	return queued, nil
}

// runJob — RunnerFunc планировщика: свежий pipeline и свежий Runner
// на каждый запуск.
func (s *Supervisor) runJob(ctx context.Context, job *domain.Job) (*domain.JobResult, error) {
	pipe, err := pipeline.Build(job.Specs, s.factory)
	if err != nil {
		return nil, err
	}
	return runner.New(job, pipe, s.stats, s.logger).Run(ctx)
}

// jobSummary — сводка финального задания для State и журнала.
type jobSummary struct {
	ID       uuid.UUID       `json:"id"`
	State    domain.JobState `json:"state"`
	Output   string          `json:"output,omitempty"`
	Error    string          `json:"error,omitempty"`
	Counters string          `json:"counters,omitempty"`
}

// onFinished вызывается планировщиком для каждой финальной записи.
func (s *Supervisor) onFinished(job *domain.Job) {
	stats.JobFinished(string(job.State))

	summary := jobSummary{ID: job.ID, State: job.State}
	if job.Result != nil {
		summary.Output = job.Result.Output
		summary.Error = job.Result.Err
	}
	if c, ok := s.stats.Snapshot(job.ID); ok {
		summary.Counters = c.String()
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.state.Record("job:"+job.ID.String(), payload); err != nil {
			s.logger.Warn("state record failed", "job_id", job.ID, "error", err)
		}
	}

	if s.jobs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.jobs.SaveResult(ctx, job); err != nil {
			s.logger.Warn("job journal failed", "job_id", job.ID, "error", err)
		}
	}
}

// --- Фасад для API и CLI ---

// Job возвращает копию записи задания.
func (s *Supervisor) Job(id uuid.UUID) (*domain.Job, error) {
	return s.sched.Job(id)
}

// Status возвращает состояние задания.
func (s *Supervisor) Status(id uuid.UUID) (domain.JobState, error) {
	return s.sched.Status(id)
}

// Result возвращает итог задания либо domain.ErrJobPending.
func (s *Supervisor) Result(id uuid.UUID) (*domain.JobResult, error) {
	return s.sched.Result(id)
}

// Cancel отменяет задание.
func (s *Supervisor) Cancel(id uuid.UUID) error {
	return s.sched.Cancel(id)
}

// List возвращает все известные задания.
func (s *Supervisor) List() ([]*domain.Job, error) {
	return s.sched.List()
}

// Kinds возвращает реестр видов задач.
func (s *Supervisor) Kinds() []domain.KindInfo {
	return domain.Kinds()
}

// Counters возвращает счётчики задания.
func (s *Supervisor) Counters(id uuid.UUID) (domain.Counters, bool) {
	return s.stats.Snapshot(id)
}

// CountersAll возвращает счётчики всех заданий.
func (s *Supervisor) CountersAll() map[uuid.UUID]domain.Counters {
	return s.stats.All()
}

// StateGet возвращает запись состояния по тегу.
func (s *Supervisor) StateGet(tag string) ([]byte, bool) {
	return s.state.Get(tag)
}

// StateTags возвращает все известные теги состояния.
func (s *Supervisor) StateTags() []string {
	return s.state.Tags()
}

// QueueLens возвращает размеры очередей планировщика.
func (s *Supervisor) QueueLens() (waiting, running, finished int, err error) {
	return s.sched.QueueLens()
}

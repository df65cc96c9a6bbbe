package sched

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/skyfetch/internal/domain"
)

// Default configuration values.
const (
	DefaultTick       = time.Second
	DefaultMaxWorkers = 4
)

// RunnerFunc выполняет pipeline одного задания и возвращает результат.
// Предоставляется Supervisor'ом: планировщик не знает, как строится
// и выполняется pipeline, он только раздаёт слоты.
type RunnerFunc func(ctx context.Context, job *domain.Job) (*domain.JobResult, error)

// Config — конфигурация Scheduler.
type Config struct {
	// Tick — интервал тика диспетчеризации (default: 1s).
	Tick time.Duration

	// MaxWorkers — максимум одновременно выполняющихся заданий,
	// не потоков (default: 4).
	MaxWorkers int

	// Runner — функция запуска задания.
	Runner RunnerFunc

	// OnFinished вызывается из цикла планировщика после перехода
	// задания в финальное состояние. Получает копию записи.
	OnFinished func(job *domain.Job)

	// Logger
	Logger *slog.Logger
}

// Scheduler — актор admission control. См. doc.go.
type Scheduler struct {
	tick       time.Duration
	maxWorkers int
	runner     RunnerFunc
	onFinished func(job *domain.Job)
	logger     *slog.Logger

	cmds      chan any
	closeOnce sync.Once
	closed    chan struct{}

	// Состояние ниже принадлежит исключительно горутине Run.
	jobs     map[uuid.UUID]*domain.Job
	waiting  []uuid.UUID
	running  map[uuid.UUID]context.CancelFunc
	finished []uuid.UUID

	runWg sync.WaitGroup
}

// New создаёт Scheduler.
func New(cfg Config) *Scheduler {
	tick := cfg.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		tick:       tick,
		maxWorkers: maxWorkers,
		runner:     cfg.Runner,
		onFinished: cfg.OnFinished,
		logger:     logger.With("actor", "scheduler"),
		cmds:       make(chan any, 64),
		closed:     make(chan struct{}),
		jobs:       make(map[uuid.UUID]*domain.Job),
		running:    make(map[uuid.UUID]context.CancelFunc),
	}
}

// --- Команды цикла ---

type submitCmd struct {
	job   *domain.Job
	reply chan submitReply
}

type submitReply struct {
	job *domain.Job
	err error
}

type cancelCmd struct {
	id    uuid.UUID
	reply chan error
}

type jobCmd struct {
	id    uuid.UUID
	reply chan jobReply
}

type jobReply struct {
	job *domain.Job
	err error
}

type listCmd struct {
	reply chan []*domain.Job
}

type lensCmd struct {
	reply chan [3]int
}

type finishedCmd struct {
	id     uuid.UUID
	result *domain.JobResult
	err    error
}

// Run — цикл сообщений планировщика. Блокирует до отмены ctx,
// затем дожидается всех запущенных Runner'ов и возвращается.
// Никакая другая горутина не трогает очереди и таблицу заданий.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "tick", s.tick, "max_workers", s.maxWorkers)

	for {
		select {
		case <-ctx.Done():
			return s.drain(ctx)
		case <-ticker.C:
			s.dispatch(ctx)
		case cmd := <-s.cmds:
			s.handle(cmd)
		}
	}
}

// drain дорабатывает завершения уже запущенных заданий после отмены ctx.
// Runner'ы получают отмену через свои контексты (производные от ctx)
// и завершаются сами; здесь мы только принимаем их finishedCmd.
func (s *Scheduler) drain(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		s.runWg.Wait()
		close(idle)
	}()

	for {
		select {
		case cmd := <-s.cmds:
			s.handle(cmd)
		case <-idle:
			s.logger.Info("scheduler stopped",
				"waiting", len(s.waiting),
				"finished", len(s.finished),
			)
			return nil
		}
	}
}

// Close закрывает планировщик для новых команд.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// dispatch — один тик: продвигает FIFO-голову waiting в running,
// пока есть свободные слоты.
func (s *Scheduler) dispatch(ctx context.Context) {
	for len(s.running) < s.maxWorkers && len(s.waiting) > 0 {
		id := s.waiting[0]
		s.waiting = s.waiting[1:]

		job := s.jobs[id]
		job.MarkRunning()

		jobCtx, cancel := context.WithCancel(ctx)
		s.running[id] = cancel

		s.runWg.Add(1)
		go s.runJob(jobCtx, job)

		s.logger.Info("job dispatched", "job_id", id, "running", len(s.running))
	}
}

// runJob выполняет задание в отдельной горутине и возвращает итог
// в цикл через finishedCmd. Паника Runner'а перехватывается и
// превращается в ERRORED, не задевая тик.
func (s *Scheduler) runJob(ctx context.Context, job *domain.Job) {
	defer s.runWg.Done()
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("runner crashed", "job_id", job.ID, "panic", p)
			s.cmds <- finishedCmd{id: job.ID, err: fmt.Errorf("%w: %v", ErrRunnerCrashed, p)}
		}
	}()

	result, err := s.runner(ctx, job)
	s.cmds <- finishedCmd{id: job.ID, result: result, err: err}
}

// handle обрабатывает одну команду цикла.
func (s *Scheduler) handle(cmd any) {
	switch c := cmd.(type) {
	case submitCmd:
		c.reply <- s.submit(c.job)
	case cancelCmd:
		c.reply <- s.cancel(c.id)
	case jobCmd:
		c.reply <- s.lookup(c.id)
	case listCmd:
		c.reply <- s.list()
	case lensCmd:
		c.reply <- [3]int{len(s.waiting), len(s.running), len(s.finished)}
	case finishedCmd:
		s.finish(c)
	}
}

// submit ставит READY-задание в хвост waiting: READY → QUEUED.
// Копия для вызывающего снимается здесь, в горутине цикла: после
// постановки в очередь живую запись трогает только цикл, и следующий
// тик может перевести её в RUNNING раньше, чем вернётся Submit.
func (s *Scheduler) submit(job *domain.Job) submitReply {
	if job.State != domain.JobStateReady {
		return submitReply{err: fmt.Errorf("%w: job %s is %s", ErrJobNotReady, job.ID, job.State)}
	}

	job.MarkQueued()
	s.jobs[job.ID] = job
	s.waiting = append(s.waiting, job.ID)

	s.logger.Debug("job queued", "job_id", job.ID, "waiting", len(s.waiting))
	return submitReply{job: job.Clone()}
}

// cancel отменяет задание.
//
// QUEUED: id убирается из waiting до запуска какого-либо воркера,
// задание сразу становится ERRORED (cancelled).
// RUNNING: отменяется контекст задания; Runner сливает pipeline тем же
// механизмом, что и при ошибке, и вернёт ErrJobCancelled.
func (s *Scheduler) cancel(id uuid.UUID) error {
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}

	switch job.State {
	case domain.JobStateQueued:
		for i, wid := range s.waiting {
			if wid == id {
				s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
				break
			}
		}
		job.MarkErrored(domain.ErrJobCancelled)
		s.finished = append(s.finished, id)
		s.notifyFinished(job)
		s.logger.Info("queued job cancelled", "job_id", id)
		return nil

	case domain.JobStateRunning:
		if cancelJob, ok := s.running[id]; ok {
			cancelJob()
		}
		s.logger.Info("running job cancel requested", "job_id", id)
		return nil

	default:
		return fmt.Errorf("%w: job %s is %s", domain.ErrJobTerminal, id, job.State)
	}
}

// finish фиксирует итог выполнения: RUNNING → FINISHED | ERRORED.
func (s *Scheduler) finish(c finishedCmd) {
	if cancelJob, ok := s.running[c.id]; ok {
		cancelJob()
		delete(s.running, c.id)
	}

	job, ok := s.jobs[c.id]
	if !ok || job.IsFinished() {
		return
	}

	if c.err != nil {
		job.MarkErrored(c.err)
	} else {
		output := ""
		if c.result != nil {
			output = c.result.Output
		}
		job.MarkFinished(output)
	}

	s.finished = append(s.finished, c.id)
	s.notifyFinished(job)

	s.logger.Info("job finished",
		"job_id", c.id,
		"state", job.State,
		"duration", job.Duration(),
	)
}

// notifyFinished отдаёт копию финальной записи наружу.
func (s *Scheduler) notifyFinished(job *domain.Job) {
	if s.onFinished != nil {
		s.onFinished(job.Clone())
	}
}

func (s *Scheduler) lookup(id uuid.UUID) jobReply {
	job, ok := s.jobs[id]
	if !ok {
		return jobReply{err: domain.ErrJobNotFound}
	}
	return jobReply{job: job.Clone()}
}

func (s *Scheduler) list() []*domain.Job {
	jobs := make([]*domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	return jobs
}

// --- Публичный API (потокобезопасный) ---

// send отправляет команду в цикл.
func (s *Scheduler) send(cmd any) error {
	select {
	case <-s.closed:
		return ErrStopped
	default:
	}

	select {
	case s.cmds <- cmd:
		return nil
	case <-s.closed:
		return ErrStopped
	}
}

// Submit ставит задание в очередь waiting и возвращает QUEUED-копию
// записи. После вызова живая запись принадлежит циклу планировщика;
// вызывающий работает только с копией.
func (s *Scheduler) Submit(job *domain.Job) (*domain.Job, error) {
	reply := make(chan submitReply, 1)
	if err := s.send(submitCmd{job: job, reply: reply}); err != nil {
		return nil, err
	}
	r := <-reply
	return r.job, r.err
}

// Cancel отменяет задание по ID.
func (s *Scheduler) Cancel(id uuid.UUID) error {
	reply := make(chan error, 1)
	if err := s.send(cancelCmd{id: id, reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Job возвращает копию записи задания.
func (s *Scheduler) Job(id uuid.UUID) (*domain.Job, error) {
	reply := make(chan jobReply, 1)
	if err := s.send(jobCmd{id: id, reply: reply}); err != nil {
		return nil, err
	}
	r := <-reply
	return r.job, r.err
}

// Status возвращает состояние задания.
func (s *Scheduler) Status(id uuid.UUID) (domain.JobState, error) {
	job, err := s.Job(id)
	if err != nil {
		return "", err
	}
	return job.State, nil
}

// Result возвращает итог задания либо ErrJobPending, если задание
// ещё не достигло финального состояния.
func (s *Scheduler) Result(id uuid.UUID) (*domain.JobResult, error) {
	job, err := s.Job(id)
	if err != nil {
		return nil, err
	}
	if !job.IsFinished() {
		return nil, domain.ErrJobPending
	}
	return job.Result, nil
}

// List возвращает копии всех известных заданий.
func (s *Scheduler) List() ([]*domain.Job, error) {
	reply := make(chan []*domain.Job, 1)
	if err := s.send(listCmd{reply: reply}); err != nil {
		return nil, err
	}
	return <-reply, nil
}

// QueueLens возвращает размеры очередей waiting/running/finished.
func (s *Scheduler) QueueLens() (waiting, running, finished int, err error) {
	reply := make(chan [3]int, 1)
	if err := s.send(lensCmd{reply: reply}); err != nil {
		return 0, 0, 0, err
	}
	lens := <-reply
	return lens[0], lens[1], lens[2], nil
}

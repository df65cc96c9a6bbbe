package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/pipeline"
)

// DefaultChanCapacity — ёмкость канала на одно ребро pipeline.
// См. doc.go про backpressure.
const DefaultChanCapacity = 32

// StatsSink принимает инкременты счётчиков задания.
// Реализуется актором Stats.
type StatsSink interface {
	Add(id uuid.UUID, c domain.Counters)
}

// Runner выполняет pipeline одного задания и возвращает один
// агрегированный результат. Runner одноразовый: на каждый запуск
// задания создаётся новый (изоляция доменов сбоя).
type Runner struct {
	job      *domain.Job
	pipe     *pipeline.Pipeline
	stats    StatsSink
	logger   *slog.Logger
	capacity int

	// parent — внешний контекст запуска; после его отмены счётчики
	// заморожены, хотя воркеры ещё сливают рёбра.
	parent context.Context
}

// New создаёт Runner для задания с построенным pipeline.
func New(job *domain.Job, pipe *pipeline.Pipeline, stats StatsSink, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		job:      job,
		pipe:     pipe,
		stats:    stats,
		logger:   logger.With("job_id", job.ID),
		capacity: DefaultChanCapacity,
	}
}

// Run выполняет pipeline до конца данных, первой ошибки или отмены ctx.
//
// Возвращает результат consumer'а при успехе; TaskError с первой
// упавшей задачей (в порядке pipeline) при сбое; domain.ErrJobCancelled,
// если внешний ctx был отменён и ни одна задача не упала сама.
func (r *Runner) Run(ctx context.Context) (*domain.JobResult, error) {
	n := r.pipe.Len()
	r.parent = ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.logger.Info("runner starting", "tasks", n)
	started := time.Now()

	// Рёбра строятся от хвоста к голове: edges[i] соединяет задачу i
	// с задачей i+1.
	edges := make([]chan domain.Packet, n-1)
	for i := n - 2; i >= 0; i-- {
		edges[i] = make(chan domain.Packet, r.capacity)
	}

	errs := make([]error, n)
	var wg sync.WaitGroup

	// Producer.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(edges[0])
		r.runWorker(0, errs, cancel, func() error {
			return r.pipe.Producer().Generate(ctx, edges[0])
		})
	}()

	// Filters.
	for i := 1; i < n-1; i++ {
		f := r.pipe.Tasks[i].(pipeline.Filter)
		in, out := edges[i-1], edges[i]

		wg.Add(1)
		go func(pos int) {
			defer wg.Done()
			defer close(out)
			r.runWorker(pos, errs, cancel, func() error {
				return r.filterLoop(ctx, pos, f, in, out)
			})
		}(i)
	}

	// Consumer.
	consumer := r.pipe.Consumer()
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.runWorker(n-1, errs, cancel, func() error {
			return r.consumerLoop(ctx, n-1, consumer, edges[n-2])
		})
	}()

	wg.Wait()

	// Задачи с файлами/соединениями закрываются после слива всех рёбер.
	// Ошибка закрытия (недописанный буфер) — сбой той же задачи.
	for i, task := range r.pipe.Tasks {
		if closer, ok := task.(io.Closer); ok {
			if err := closer.Close(); err != nil && errs[i] == nil {
				errs[i] = err
			}
		}
	}

	r.statsAdd(domain.Counters{Duration: time.Since(started)})

	// Первый сбой в порядке pipeline. Ошибки отмены контекста — не сбой
	// задачи, а следствие слива после чужого сбоя или внешней отмены.
	for i, err := range errs {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		taskErr := &TaskError{Kind: r.pipe.Tasks[i].Kind(), Pos: i, Err: err}
		r.statsAdd(domain.Counters{Errors: 1})
		r.logger.Warn("pipeline failed", "task", taskErr.Kind, "pos", taskErr.Pos, "error", err)
		return nil, taskErr
	}

	if r.parent.Err() != nil {
		r.logger.Info("pipeline cancelled")
		return nil, domain.ErrJobCancelled
	}

	result := &domain.JobResult{Output: consumer.Output()}
	r.logger.Info("runner finished", "output", result.Output, "duration", time.Since(started))
	return result, nil
}

// runWorker выполняет fn, перехватывая панику и отменяя pipeline
// при любом сбое.
func (r *Runner) runWorker(pos int, errs []error, cancel context.CancelFunc, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			errs[pos] = fmt.Errorf("%w: %v", ErrWorkerPanic, p)
			cancel()
		}
	}()

	if err := fn(); err != nil {
		errs[pos] = err
		cancel()
	}
}

// filterLoop — цикл воркера-фильтра: принять, преобразовать, передать.
// Выходит по закрытию upstream, ошибке Process или отмене ctx.
func (r *Runner) filterLoop(ctx context.Context, pos int, f pipeline.Filter, in <-chan domain.Packet, out chan<- domain.Packet) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pkt, ok := <-in:
			if !ok {
				return nil
			}
			r.countInbound(pos, pkt)

			res, err := f.Process(ctx, pkt)
			if err != nil {
				return err
			}

			select {
			case out <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// consumerLoop — цикл воркера-consumer'а: принять и записать.
func (r *Runner) consumerLoop(ctx context.Context, pos int, c pipeline.Consumer, in <-chan domain.Packet) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pkt, ok := <-in:
			if !ok {
				return nil
			}
			r.countInbound(pos, pkt)

			if err := c.Consume(ctx, pkt); err != nil {
				return err
			}
			r.statsAdd(domain.Counters{BytesOut: uint64(pkt.Size())})
		}
	}
}

// countInbound считает пакеты и байты на входе в pipeline,
// то есть на приёмной стороне первого ребра.
func (r *Runner) countInbound(pos int, pkt domain.Packet) {
	if pos == 1 {
		r.statsAdd(domain.Counters{Packets: 1, Bytes: uint64(pkt.Size())})
	}
}

// statsAdd — все инкременты счётчиков идут через эту точку.
// Внешняя отмена замораживает статистику задания: пакеты, которые
// воркеры дорабатывают в окне слива, уже не считаются.
func (r *Runner) statsAdd(c domain.Counters) {
	if r.parent.Err() != nil {
		return
	}
	r.stats.Add(r.job.ID, c)
}

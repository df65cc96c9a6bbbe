package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/pipeline"
)

// --- Фейковые задачи ---

// listProducer порождает заданные пакеты и завершается.
type listProducer struct{ payloads []string }

func (p *listProducer) Kind() domain.Kind { return domain.KindRead }
func (p *listProducer) Generate(ctx context.Context, out chan<- domain.Packet) error {
	for _, s := range p.payloads {
		select {
		case out <- domain.Packet{Source: "test", Format: domain.FormatRaw, Payload: []byte(s), TS: time.Now()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// tickProducer порождает пакеты бесконечно, пока его не отменят.
type tickProducer struct{}

func (p *tickProducer) Kind() domain.Kind { return domain.KindStream }
func (p *tickProducer) Generate(ctx context.Context, out chan<- domain.Packet) error {
	for i := 0; ; i++ {
		pkt := domain.Packet{Source: "tick", Format: domain.FormatRaw, Payload: []byte(fmt.Sprintf("p%d", i))}
		select {
		case out <- pkt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// upperFilter помечает пакет префиксом f(...); failOn — payload,
// на котором фильтр падает.
type upperFilter struct {
	failOn string
	panics bool
}

func (f *upperFilter) Kind() domain.Kind { return domain.KindConvert }
func (f *upperFilter) Process(ctx context.Context, pkt domain.Packet) (domain.Packet, error) {
	if f.failOn != "" && string(pkt.Payload) == f.failOn {
		if f.panics {
			panic("filter exploded on " + f.failOn)
		}
		return domain.Packet{}, errors.New("cannot transform " + f.failOn)
	}
	pkt.Payload = append([]byte("f("), append(pkt.Payload, ')')...)
	return pkt, nil
}

// collectConsumer собирает потреблённые payload'ы.
type collectConsumer struct {
	mu   sync.Mutex
	got  []string
	fail string
}

func (c *collectConsumer) Kind() domain.Kind { return domain.KindSave }
func (c *collectConsumer) Consume(ctx context.Context, pkt domain.Packet) error {
	if c.fail != "" && bytes.Contains(pkt.Payload, []byte(c.fail)) {
		return errors.New("write failed")
	}
	c.mu.Lock()
	c.got = append(c.got, string(pkt.Payload))
	c.mu.Unlock()
	return nil
}
func (c *collectConsumer) Output() string { return "collected" }

func (c *collectConsumer) collected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

// memStats — потокобезопасный StatsSink для тестов.
type memStats struct {
	mu sync.Mutex
	c  domain.Counters
}

func (s *memStats) Add(id uuid.UUID, c domain.Counters) {
	s.mu.Lock()
	s.c.Add(c)
	s.mu.Unlock()
}

func (s *memStats) snapshot() domain.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c
}

func testPipeline(tasks ...pipeline.Task) *pipeline.Pipeline {
	specs := make([]domain.TaskSpec, len(tasks))
	for i, t := range tasks {
		specs[i] = domain.TaskSpec{Kind: t.Kind()}
	}
	return &pipeline.Pipeline{Specs: specs, Tasks: tasks}
}

func testJob() *domain.Job {
	job := domain.NewJob("test")
	job.MarkReady(nil)
	job.MarkQueued()
	job.MarkRunning()
	return job
}

// --- Тесты ---

func TestRun_DeliversInOrder(t *testing.T) {
	consumer := &collectConsumer{}
	stats := &memStats{}
	pipe := testPipeline(
		&listProducer{payloads: []string{"p1", "p2", "p3"}},
		&upperFilter{},
		consumer,
	)

	res, err := New(testJob(), pipe, stats, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "collected" {
		t.Errorf("expected consumer output, got %q", res.Output)
	}

	want := []string{"f(p1)", "f(p2)", "f(p3)"}
	got := consumer.collected()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("packet %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	c := stats.snapshot()
	if c.Packets != 3 {
		t.Errorf("expected 3 packets counted, got %d", c.Packets)
	}
	if c.Bytes == 0 || c.BytesOut == 0 {
		t.Errorf("expected byte counters, got %s", c.String())
	}
}

func TestRun_FilterFailureCitesFilter(t *testing.T) {
	consumer := &collectConsumer{}
	pipe := testPipeline(
		&listProducer{payloads: []string{"p1", "p2", "p3"}},
		&upperFilter{failOn: "p2"},
		consumer,
	)

	_, err := New(testJob(), pipe, &memStats{}, nil).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("expected TaskError, got %T: %v", err, err)
	}
	if taskErr.Pos != 1 || taskErr.Kind != domain.KindConvert {
		t.Errorf("expected failing task 1 (convert), got %d (%s)", taskErr.Pos, taskErr.Kind)
	}

	for _, got := range consumer.collected() {
		if got == "f(p3)" {
			t.Error("consumer must never receive f(p3) after filter failure on p2")
		}
	}
}

func TestRun_ConsumerFailureCitesConsumer(t *testing.T) {
	pipe := testPipeline(
		&listProducer{payloads: []string{"p1", "p2"}},
		&upperFilter{},
		&collectConsumer{fail: "p1"},
	)

	_, err := New(testJob(), pipe, &memStats{}, nil).Run(context.Background())

	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("expected TaskError, got %v", err)
	}
	if taskErr.Pos != 2 || taskErr.Kind != domain.KindSave {
		t.Errorf("expected failing task 2 (save), got %d (%s)", taskErr.Pos, taskErr.Kind)
	}
}

func TestRun_ExternalCancel(t *testing.T) {
	consumer := &collectConsumer{}
	pipe := testPipeline(&tickProducer{}, &upperFilter{}, consumer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var runErr error

	go func() {
		_, runErr = New(testJob(), pipe, &memStats{}, nil).Run(ctx)
		close(done)
	}()

	// Даём pipeline поработать, затем отменяем.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not drain after cancel")
	}

	if !errors.Is(runErr, domain.ErrJobCancelled) {
		t.Errorf("expected ErrJobCancelled, got %v", runErr)
	}
}

// gateConsumer пропускает по одному пакету на каждый сигнал gate.
type gateConsumer struct {
	collectConsumer
	gate chan struct{}
}

func (c *gateConsumer) Consume(ctx context.Context, pkt domain.Packet) error {
	select {
	case <-c.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.collectConsumer.Consume(ctx, pkt)
}

func TestRun_CancelFreezesStats(t *testing.T) {
	stats := &memStats{}
	consumer := &gateConsumer{gate: make(chan struct{})}
	pipe := testPipeline(
		&listProducer{payloads: []string{"p1", "p2", "p3", "p4", "p5"}},
		&upperFilter{},
		consumer,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var runErr error

	go func() {
		_, runErr = New(testJob(), pipe, stats, nil).Run(ctx)
		close(done)
	}()

	// Пропускаем два пакета и ждём затишья: producer и фильтр
	// закончили (пять пакетов помещаются в буферы рёбер, Packets=5),
	// consumer досчитал два пропущенных (BytesOut = 2 x "f(pX)")
	// и заблокирован в Consume на третьем. Ни одного инкремента
	// в полёте — снимок в момент отмены детерминирован.
	consumer.gate <- struct{}{}
	consumer.gate <- struct{}{}

	quiet := func() bool {
		c := stats.snapshot()
		return c.Packets == 5 && c.BytesOut == uint64(2*len("f(p1)"))
	}
	deadline := time.Now().Add(2 * time.Second)
	for !quiet() {
		if time.Now().After(deadline) {
			t.Fatalf("pipeline never went quiet: %s", stats.snapshot().String())
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	atCancel := stats.snapshot()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not drain after cancel")
	}

	if !errors.Is(runErr, domain.ErrJobCancelled) {
		t.Fatalf("expected ErrJobCancelled, got %v", runErr)
	}

	// После отмены счётчики заморожены: окно слива ничего не добавляет,
	// длительность не записывается.
	final := stats.snapshot()
	if final != atCancel {
		t.Errorf("counters mutated after cancel: %s -> %s", atCancel.String(), final.String())
	}
	if final.Duration != 0 {
		t.Errorf("duration recorded for cancelled job: %v", final.Duration)
	}
}

func TestRun_WorkerPanicBecomesTaskError(t *testing.T) {
	pipe := testPipeline(
		&listProducer{payloads: []string{"p1", "p2"}},
		&upperFilter{failOn: "p2", panics: true},
		&collectConsumer{},
	)

	_, err := New(testJob(), pipe, &memStats{}, nil).Run(context.Background())
	if !errors.Is(err, ErrWorkerPanic) {
		t.Fatalf("expected ErrWorkerPanic, got %v", err)
	}

	var taskErr *TaskError
	if !errors.As(err, &taskErr) || taskErr.Pos != 1 {
		t.Errorf("expected TaskError at pos 1, got %v", err)
	}
}

func TestRun_ErrorsCounted(t *testing.T) {
	stats := &memStats{}
	pipe := testPipeline(
		&listProducer{payloads: []string{"p1"}},
		&upperFilter{failOn: "p1"},
		&collectConsumer{},
	)

	_, err := New(testJob(), pipe, stats, nil).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if c := stats.snapshot(); c.Errors != 1 {
		t.Errorf("expected 1 error counted, got %d", c.Errors)
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskSpec — одна разобранная задача из текста задания:
// вид плюс параметры вызова kind(k=v, ...).
type TaskSpec struct {
	// Kind — вид задачи.
	Kind Kind `json:"kind"`

	// Params — параметры операции (site=, out=, to= и т.д.).
	Params map[string]string `json:"params,omitempty"`
}

// Param возвращает значение параметра или def, если параметра нет.
func (s TaskSpec) Param(key, def string) string {
	if v, ok := s.Params[key]; ok {
		return v
	}
	return def
}

// JobResult — итог выполнения задания.
type JobResult struct {
	// Output — сводка успешного выполнения (обычно путь к результату).
	Output string `json:"output,omitempty"`

	// Err — текст ошибки, если задание завершилось в ERRORED.
	Err string `json:"error,omitempty"`
}

// Job — одно задание: текст pipeline, разобранный список задач,
// состояние и временные метки.
//
// Владение: пока задание QUEUED, им владеет только Scheduler;
// на время RUNNING оно передаётся ровно одному Runner'у; после
// финального состояния запись неизменна.
type Job struct {
	// ID — уникальный в пределах процесса идентификатор.
	ID uuid.UUID `json:"id"`

	// Text — исходный текст pipeline.
	Text string `json:"text"`

	// Specs — разобранный список задач. Nil до успешного парсинга.
	Specs []TaskSpec `json:"specs,omitempty"`

	// State — текущее состояние (см. JobState).
	State JobState `json:"state"`

	// Временные метки. Каждая выставляется ровно один раз, монотонно.
	CreatedAt  time.Time  `json:"created_at"`
	QueuedAt   *time.Time `json:"queued_at,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Result — итог. Nil до финального состояния.
	Result *JobResult `json:"result,omitempty"`
}

// NewJob создаёт задание в состоянии CREATED.
func NewJob(text string) *Job {
	return &Job{
		ID:        uuid.New(),
		Text:      text,
		State:     JobStateCreated,
		CreatedAt: time.Now(),
	}
}

// MarkReady фиксирует успешно разобранный pipeline: CREATED → READY.
func (j *Job) MarkReady(specs []TaskSpec) {
	j.Specs = specs
	j.State = JobStateReady
}

// MarkQueued переводит задание в очередь: READY → QUEUED.
func (j *Job) MarkQueued() {
	now := time.Now()
	j.State = JobStateQueued
	j.QueuedAt = &now
}

// MarkRunning фиксирует начало выполнения: QUEUED → RUNNING.
func (j *Job) MarkRunning() {
	now := time.Now()
	j.State = JobStateRunning
	j.StartedAt = &now
}

// MarkFinished фиксирует успешное завершение: RUNNING → FINISHED.
func (j *Job) MarkFinished(output string) {
	now := time.Now()
	j.State = JobStateFinished
	j.FinishedAt = &now
	j.Result = &JobResult{Output: output}
}

// MarkErrored фиксирует завершение с ошибкой.
// Допустим из QUEUED (отмена до запуска) и из RUNNING.
func (j *Job) MarkErrored(err error) {
	now := time.Now()
	j.State = JobStateErrored
	j.FinishedAt = &now
	j.Result = &JobResult{Err: err.Error()}
}

// IsFinished возвращает true, если задание в финальном состоянии.
func (j *Job) IsFinished() bool {
	return j.State.IsTerminal()
}

// Duration возвращает продолжительность выполнения.
// 0, если задание ещё не запускалось или не завершилось.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// Clone возвращает копию задания для выдачи наружу.
// Слайсы и указатели копируются, чтобы вызывающий не мог
// повлиять на запись, которой владеет Scheduler.
func (j *Job) Clone() *Job {
	c := *j
	if j.Specs != nil {
		c.Specs = make([]TaskSpec, len(j.Specs))
		copy(c.Specs, j.Specs)
	}
	if j.QueuedAt != nil {
		t := *j.QueuedAt
		c.QueuedAt = &t
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return &c
}

package pipeline

import (
	"errors"
	"fmt"
)

// Ошибки валидации заданий.
var (
	// ErrEmptyPipeline — текст задания не содержит ни одной задачи.
	ErrEmptyPipeline = errors.New("pipeline has no tasks")

	// ErrSyntax — синтаксическая ошибка в тексте задания.
	ErrSyntax = errors.New("pipeline syntax error")

	// ErrUnknownKind — неизвестный вид задачи.
	ErrUnknownKind = errors.New("unknown task kind")

	// ErrFirstNotProducer — первая задача не является Producer'ом.
	ErrFirstNotProducer = errors.New("first task must be a producer")

	// ErrLastNotConsumer — последняя задача не является Consumer'ом.
	ErrLastNotConsumer = errors.New("last task must be a consumer")

	// ErrInteriorNotFilter — внутренняя задача не является Filter'ом.
	ErrInteriorNotFilter = errors.New("interior task must be a filter")
)

// ValidationError — ошибка валидации задания с контекстом:
// позиция задачи в pipeline (с нуля) и её вид, если известен.
type ValidationError struct {
	Pos     int    // позиция задачи, -1 если не относится к конкретной
	Kind    string // вид задачи, "" если не распознан
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Pos >= 0 && e.Kind != "" {
		return fmt.Sprintf("task %d (%s): %s", e.Pos, e.Kind, e.Message)
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("task %d: %s", e.Pos, e.Message)
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт ошибку валидации.
func NewValidationError(pos int, kind, message string, err error) *ValidationError {
	return &ValidationError{Pos: pos, Kind: kind, Message: message, Err: err}
}

package runner

import (
	"errors"
	"fmt"

	"github.com/shaiso/skyfetch/internal/domain"
)

// ErrWorkerPanic — воркер задачи упал с паникой.
// Паника перехватывается и превращается в TaskError, не роняя процесс.
var ErrWorkerPanic = errors.New("task worker panicked")

// TaskError — терминальная ошибка задания: какая задача упала и где.
// При нескольких сбоях фиксируется первый в порядке pipeline.
type TaskError struct {
	// Kind — вид упавшей задачи.
	Kind domain.Kind

	// Pos — позиция задачи в pipeline (с нуля).
	Pos int

	// Err — исходная ошибка задачи.
	Err error
}

// Error реализует интерфейс error.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s): %v", e.Pos, e.Kind, e.Err)
}

// Unwrap возвращает исходную ошибку.
func (e *TaskError) Unwrap() error {
	return e.Err
}

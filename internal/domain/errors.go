package domain

import "errors"

// Общие ошибки жизненного цикла заданий.
var (
	// ErrJobNotFound — задание с таким ID неизвестно.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobPending — задание ещё не достигло финального состояния.
	ErrJobPending = errors.New("job still pending")

	// ErrJobCancelled — задание отменено пользователем.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrJobTerminal — операция невозможна над завершённым заданием.
	ErrJobTerminal = errors.New("job already in terminal state")
)

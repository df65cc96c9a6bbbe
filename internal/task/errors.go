package task

import "errors"

// Ошибки инстанцирования задач.
var (
	// ErrMissingParam — в spec задачи нет обязательного параметра.
	ErrMissingParam = errors.New("missing required parameter")

	// ErrDatabaseNotConfigured — задаче store нужна база, а демон
	// запущен без неё.
	ErrDatabaseNotConfigured = errors.New("database not configured")
)

package format

import "errors"

// Ошибки преобразования.
var (
	// ErrBadPayload — полезная нагрузка не разбирается в state vectors.
	ErrBadPayload = errors.New("payload is not valid state vector data")

	// ErrBadHeader — CSV без ожидаемого заголовка.
	ErrBadHeader = errors.New("unexpected csv header")
)

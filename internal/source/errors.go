package source

import "errors"

// Ошибки источников.
var (
	// ErrSiteNotFound — site с таким именем не описан в реестре.
	ErrSiteNotFound = errors.New("site not found")

	// ErrNotFetchable — источник не поддерживает разовую выборку.
	ErrNotFetchable = errors.New("site does not support fetch")

	// ErrNotStreamable — источник не поддерживает непрерывный поток.
	ErrNotStreamable = errors.New("site does not support stream")

	// ErrAMQPNotConfigured — в реестре нет соединения с брокером.
	ErrAMQPNotConfigured = errors.New("amqp connection not configured")
)

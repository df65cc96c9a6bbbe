// Package source реализует источники данных наблюдения.
//
// Site — декларативное описание источника в YAML (тип, адрес, формат,
// токен). Registry загружает описания и по имени открывает Source —
// конкретную реализацию доступа:
//
//   - http — одноразовый GET, весь ответ одним пакетом
//   - amqp — непрерывный поток сообщений из очереди RabbitMQ
//   - file — чтение локального файла (фикстуры, ручные выгрузки)
//
// Fetch — разовая выборка, Stream — бесконечный поток до отмены ctx.
// Не каждый источник умеет и то и другое: http не стримит, amqp не
// делает разовых выборок.
package source

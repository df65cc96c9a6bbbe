// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает structured logging через slog: единый формат вывода
// (JSON или текст, через LOG_FORMAT), уровень через LOG_LEVEL и
// helpers для протаскивания логгера через context.
//
// Prometheus метрики определяются рядом с кодом, который их
// инкрементирует (internal/stats), и экспортируются демоном
// на /metrics endpoint.
package telemetry

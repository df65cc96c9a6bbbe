// Package schedule реализует периодическую подачу заданий по cron.
//
// Записи расписания (имя, cron-выражение, текст задания) приходят из
// конфигурации демона. Runner расписания не выполняет pipeline сам:
// по срабатыванию он подаёт текст задания в engine обычным Submit,
// дальше задание живёт по общим правилам очереди.
package schedule

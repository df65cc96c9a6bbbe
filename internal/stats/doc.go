// Package stats агрегирует счётчики выполнения заданий.
//
// Runner шлёт инкременты по мере прохождения пакетов; Stats держит
// агрегаты по заданиям под мьютексом и дублирует их в Prometheus
// счётчики процесса. Снимок по заданию доступен в любой момент,
// в том числе во время выполнения.
package stats

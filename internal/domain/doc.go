// Package domain содержит основные типы данных skyfetch:
// пакеты наблюдения (Packet), виды задач (Kind) с их capability,
// задания (Job) с их жизненным циклом и счётчики (Counters).
//
// Пакет пассивный: никакой конкурентности, только данные и переходы
// состояний. Все активные компоненты живут в internal/sched,
// internal/runner и internal/supervisor.
package domain

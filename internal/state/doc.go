// Package state реализует актор разделяемого состояния.
//
// State хранит слепок tag → payload: сводки финальных заданий,
// отметки последних успешных выборок по источникам и прочие факты,
// которые переживают отдельное задание. Записи идут через цикл
// сообщений (последняя запись по тегу выигрывает), чтение — снимком.
//
// Память — источник истины; подключённый Sink (репозиторий в БД)
// получает копию каждой записи best effort: отказ БД логируется,
// но не валит ни запись, ни задание.
package state

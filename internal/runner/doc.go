// Package runner выполняет pipeline одного задания.
//
// Runner строит цепочку воркеров от хвоста к голове: на каждое ребро
// pipeline создаётся ограниченный канал, на каждую задачу — своя
// горутина. Пакеты двигаются строго FIFO по каждому ребру; общей
// изменяемой памяти между стадиями нет.
//
// Backpressure: каждый канал-ребро ограничен DefaultChanCapacity
// пакетами. Быстрый producer перед медленным consumer'ом блокируется
// на отправке, когда ребро заполнено, поэтому память задания ограничена
// capacity * число стадий.
//
// Сбой любой задачи отменяет контекст pipeline: producer перестаёт
// порождать пакеты, воркеры закрывают свои выходные каналы и цепочка
// сливается без дедлока. Уже записанный durable-вывод не откатывается.
package runner

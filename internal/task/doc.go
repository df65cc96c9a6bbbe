// Package task содержит реализации видов задач pipeline.
//
// # Обзор
//
// Каждый вид задачи — одна стадия pipeline с фиксированной capability:
//
// Producers (первая стадия):
//   - fetch(site=NAME)            — разовая выборка из источника
//   - stream(site=NAME)           — непрерывный поток из источника
//   - read(path=FILE, format=F)   — чтение локального файла
//
// Filters (внутренние стадии):
//   - convert(to=csv|json)        — преобразование формата
//   - copy()                      — передача без изменений
//   - message(msg=TEXT)           — передача с логированием сообщения
//   - nothing()                   — no-op
//   - tee(area=A, name=N)         — передача с копией в файл области
//
// Consumers (последняя стадия):
//   - save(out=PATH)              — запись в один выходной файл
//   - store(area=A)               — вставка пакетов в базу данных
//   - archive(area=A, name=N)     — запись в gzip архив области
//   - record(area=A, name=N)      — дозапись потока в файл области
//
// # Factory
//
// Factory инстанцирует задачу по TaskSpec и проверяет параметры.
// Зависимости (реестр источников, конвертер, хранилище, база)
// передаются один раз при создании фабрики; задачи получают только то,
// что им нужно.
package task

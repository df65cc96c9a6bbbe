// Package cli реализует инструмент командной строки skyfetch.
//
// CLI — клиентская утилита для демона skyfetch. Работает через HTTP
// API и не зависит от engine; единственное исключение — пакет jobfile,
// которым `job submit -f` компилирует HCL-файлы заданий на стороне
// клиента перед отправкой.
//
// Client инкапсулирует HTTP-запросы и разбор ответов
// (DataResponse, ListResponse, ErrorResponse). Output форматирует
// вывод: таблицы через text/tabwriter по умолчанию, JSON с флагом
// --json. Данные идут в stdout, сообщения — в stderr, так что
// `skyfetch job list --json | jq .` работает.
//
// Cobra-команды создаются фабричными функциями (NewJobCmd и т.д.),
// принимающими clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli

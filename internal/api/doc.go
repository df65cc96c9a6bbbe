// Package api — HTTP API демона skyfetch.
//
// Обработчики ходят в engine через узкий интерфейс Engine (его
// реализует supervisor.Supervisor), поэтому пакет тестируется без
// запуска планировщика. Маршруты регистрируются на стандартном
// http.ServeMux c method-паттернами; сквозные заботы (паника,
// логирование запросов) — через цепочку Middleware.
package api

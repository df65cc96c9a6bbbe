// Package config загружает конфигурацию демона.
//
// Источник — YAML файл; отдельные поля перекрываются переменными
// окружения (SKYFETCH_LISTEN, DB_URL, AMQP_URL), чтобы деплой мог
// не трогать файл. Отсутствующий файл — не ошибка: демон поднимается
// на дефолтах, без БД и брокера.
package config

// Package repo реализует доступ к PostgreSQL.
//
// Репозитории — тонкие обёртки над pgxpool: один тип на таблицу,
// SQL прямо в методах, маппинг в domain типы на месте.
//
// База опциональна: демон без DB_URL работает полностью, кроме
// задач store и персистентности журнала заданий.
package repo

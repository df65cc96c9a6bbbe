// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - consumer.go   — потребление сырых пакетов наблюдения из очереди
//
// Очереди объявляются станциями-поставщиками (антенны, шлюзы ADS-B);
// skyfetch только потребляет из них. Consumer объявляет очередь
// идемпотентно, чтобы stream-задача могла стартовать раньше поставщика.
package mq

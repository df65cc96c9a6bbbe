// Package supervisor собирает акторы в работающий engine.
//
// Supervisor владеет жизненным циклом State и Scheduler (стратегия
// one-for-one: упавший актор перезапускается, остальных это не
// касается) и предоставляет единый фасад для API и CLI: submit,
// status, result, cancel, list.
//
// Submit разбирает текст задания и проверяет топологию до постановки
// в очередь: плохое задание отклоняется сразу и не занимает слот.
// Выполнение строит свежий pipeline на каждое задание; финальные
// записи уходят в журнал БД и в актор State.
package supervisor

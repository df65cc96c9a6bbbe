// Package pipeline превращает текстовое описание задания в проверенную,
// capability-типизированную цепочку задач.
//
// Три шага:
//
//	specs, err := pipeline.Parse("fetch(site=eih) -> convert(to=json) -> save(out=/tmp/x.json)")
//	err = pipeline.ValidateTopology(specs)
//	p, err := pipeline.Build(specs, factory)
//
// Parse разбирает синтаксис, ValidateTopology проверяет грамматику
// топологии (Producer, Filter*, Consumer), Build инстанцирует задачи
// через Factory. Всё синхронно, чисто и без I/O: невалидное задание
// отбрасывается до того, как стартует хоть одна горутина.
package pipeline

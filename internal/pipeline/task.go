package pipeline

import (
	"context"

	"github.com/shaiso/skyfetch/internal/domain"
)

// Task — одна стадия pipeline. Конкретное поведение задаётся одним из
// трёх производных интерфейсов: Producer, Filter или Consumer.
// Capability задачи фиксируется при построении и не меняется.
//
// Задача, удерживающая ресурс (файл, gzip-буфер), дополнительно
// реализует io.Closer; Runner закрывает её после слива pipeline.
type Task interface {
	// Kind возвращает вид задачи.
	Kind() domain.Kind
}

// Producer — задача, порождающая пакеты в собственном ритме.
//
// Generate пишет пакеты в out до конца данных или отмены ctx и
// возвращает управление; out закрывает Runner. Каждая запись в out
// обязана выбирать между отправкой и ctx.Done(), иначе producer
// повиснет при аварийном сливе pipeline.
type Producer interface {
	Task
	Generate(ctx context.Context, out chan<- domain.Packet) error
}

// Filter — задача, преобразующая пакеты один-в-один.
// Process не должен удерживать ссылку на возвращённый Packet.
type Filter interface {
	Task
	Process(ctx context.Context, pkt domain.Packet) (domain.Packet, error)
}

// Consumer — задача, потребляющая пакеты (запись в файл, БД и т.д.).
type Consumer interface {
	Task
	Consume(ctx context.Context, pkt domain.Packet) error

	// Output возвращает сводку результата (обычно путь к выходу).
	// Вызывается после того, как все пакеты потреблены.
	Output() string
}

// Factory инстанцирует задачу по её spec. Реализация по умолчанию
// живёт в internal/task; тесты подставляют свои фабрики.
type Factory interface {
	Make(spec domain.TaskSpec) (Task, error)
}

// FactoryFunc — адаптер функции к интерфейсу Factory.
type FactoryFunc func(spec domain.TaskSpec) (Task, error)

// Make реализует Factory.
func (f FactoryFunc) Make(spec domain.TaskSpec) (Task, error) {
	return f(spec)
}

// Pipeline — проверенная, готовая к запуску цепочка задач.
// Tasks[0] всегда Producer, последний — Consumer, внутренние — Filter.
type Pipeline struct {
	Specs []domain.TaskSpec
	Tasks []Task
}

// Len возвращает число задач в цепочке.
func (p *Pipeline) Len() int {
	return len(p.Tasks)
}

// Producer возвращает первую задачу цепочки.
func (p *Pipeline) Producer() Producer {
	return p.Tasks[0].(Producer)
}

// Consumer возвращает последнюю задачу цепочки.
func (p *Pipeline) Consumer() Consumer {
	return p.Tasks[len(p.Tasks)-1].(Consumer)
}

package domain

// Capability — допустимая позиция задачи в pipeline.
//
// Producer стоит только первым, Consumer — только последним,
// Filter — только между ними. Capability выводится из Kind статически
// и не меняется после создания задачи.
type Capability string

const (
	// CapabilityProducer — задача порождает пакеты (нет upstream).
	CapabilityProducer Capability = "producer"

	// CapabilityFilter — задача преобразует пакеты (upstream и downstream).
	CapabilityFilter Capability = "filter"

	// CapabilityConsumer — задача потребляет пакеты (нет downstream).
	CapabilityConsumer Capability = "consumer"
)

// Kind — вид задачи pipeline. Закрытое множество: новые виды добавляются
// только в kindTable, диспетчеризация по таблице, не через открытый
// полиморфизм.
type Kind string

// Все виды задач.
const (
	KindFetch   Kind = "fetch"
	KindStream  Kind = "stream"
	KindRead    Kind = "read"
	KindConvert Kind = "convert"
	KindCopy    Kind = "copy"
	KindMessage Kind = "message"
	KindNothing Kind = "nothing"
	KindTee     Kind = "tee"
	KindSave    Kind = "save"
	KindStore   Kind = "store"
	KindArchive Kind = "archive"
	KindRecord  Kind = "record"
)

// KindInfo — запись реестра видов задач.
type KindInfo struct {
	Name        Kind       `json:"name"`
	Capability  Capability `json:"capability"`
	Description string     `json:"description"`
}

// kindTable — статический реестр вид → capability.
var kindTable = map[Kind]KindInfo{
	KindFetch:   {KindFetch, CapabilityProducer, "one-shot fetch from a configured site"},
	KindStream:  {KindStream, CapabilityProducer, "continuous stream from a configured site"},
	KindRead:    {KindRead, CapabilityProducer, "read packets from a local file"},
	KindConvert: {KindConvert, CapabilityFilter, "convert packets to another format"},
	KindCopy:    {KindCopy, CapabilityFilter, "pass packets through unchanged"},
	KindMessage: {KindMessage, CapabilityFilter, "pass packets through, logging a message"},
	KindNothing: {KindNothing, CapabilityFilter, "no-op filter"},
	KindTee:     {KindTee, CapabilityFilter, "pass through and copy to a file"},
	KindSave:    {KindSave, CapabilityConsumer, "save packets into one output file"},
	KindStore:   {KindStore, CapabilityConsumer, "insert packets into the database"},
	KindArchive: {KindArchive, CapabilityConsumer, "write packets into a gzip archive"},
	KindRecord:  {KindRecord, CapabilityConsumer, "record packets into a storage area"},
}

// Valid возвращает true, если вид задачи известен.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Capability возвращает capability вида задачи.
// Второе значение false для неизвестного вида.
func (k Kind) Capability() (Capability, bool) {
	info, ok := kindTable[k]
	return info.Capability, ok
}

// Kinds возвращает реестр всех видов задач в фиксированном порядке:
// producers, filters, consumers.
func Kinds() []KindInfo {
	order := []Kind{
		KindFetch, KindStream, KindRead,
		KindConvert, KindCopy, KindMessage, KindNothing, KindTee,
		KindSave, KindStore, KindArchive, KindRecord,
	}
	infos := make([]KindInfo, 0, len(order))
	for _, k := range order {
		infos = append(infos, kindTable[k])
	}
	return infos
}

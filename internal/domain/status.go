package domain

// JobState — состояние задания.
//
// Жизненный цикл:
//
//	CREATED → READY → QUEUED → RUNNING → FINISHED
//	                                   ↘ ERRORED
//
// Посещённые состояния всегда образуют префикс этой цепочки:
// ни одно не пропускается и не посещается повторно. Отмена задания
// завершает его в ERRORED с причиной "cancelled".
type JobState string

const (
	// JobStateCreated — задание создано, pipeline ещё не построен.
	JobStateCreated JobState = "CREATED"

	// JobStateReady — текст задания разобран, топология проверена.
	JobStateReady JobState = "READY"

	// JobStateQueued — задание в очереди waiting, ждёт слота.
	JobStateQueued JobState = "QUEUED"

	// JobStateRunning — задание выполняется своим Runner'ом.
	JobStateRunning JobState = "RUNNING"

	// JobStateFinished — все задачи завершились без ошибок.
	JobStateFinished JobState = "FINISHED"

	// JobStateErrored — какая-то задача завершилась ошибкой,
	// либо задание было отменено.
	JobStateErrored JobState = "ERRORED"
)

// IsTerminal возвращает true, если состояние финальное.
// Перезапуск финального задания невозможен: создаётся новое.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateFinished, JobStateErrored:
		return true
	default:
		return false
	}
}

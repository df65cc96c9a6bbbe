package sched

import "errors"

// Ошибки планировщика.
var (
	// ErrJobNotReady — задание не в состоянии READY, в очередь не принято.
	ErrJobNotReady = errors.New("job is not ready")

	// ErrRunnerCrashed — Runner задания упал с паникой;
	// задание завершается в ERRORED, тик не останавливается.
	ErrRunnerCrashed = errors.New("runner crashed")

	// ErrStopped — планировщик остановлен, команды не принимаются.
	ErrStopped = errors.New("scheduler stopped")
)

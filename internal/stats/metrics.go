package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики процесса. Экспортируются демоном на /metrics.
var (
	packetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyfetch_packets_total",
		Help: "Packets that entered a pipeline",
	})

	bytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyfetch_bytes_total",
		Help: "Payload bytes by direction",
	}, []string{"direction"})

	taskErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyfetch_task_errors_total",
		Help: "Task failures inside pipelines",
	})

	jobsFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyfetch_jobs_finished_total",
		Help: "Jobs by terminal state",
	}, []string{"state"})
)

// JobFinished инкрементирует счётчик финальных состояний.
func JobFinished(state string) {
	jobsFinishedTotal.WithLabelValues(state).Inc()
}

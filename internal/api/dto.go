package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/skyfetch/internal/domain"
)

// SubmitJobRequest — запрос на постановку задания.
type SubmitJobRequest struct {
	Pipeline string `json:"pipeline"`
}

// JobResponse — ответ с заданием.
type JobResponse struct {
	ID         uuid.UUID         `json:"id"`
	Pipeline   string            `json:"pipeline"`
	State      string            `json:"state"`
	Tasks      []domain.TaskSpec `json:"tasks,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	QueuedAt   *time.Time        `json:"queued_at,omitempty"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Output     string            `json:"output,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// JobFromDomain конвертирует domain.Job в JobResponse.
func JobFromDomain(j *domain.Job) JobResponse {
	resp := JobResponse{
		ID:         j.ID,
		Pipeline:   j.Text,
		State:      string(j.State),
		Tasks:      j.Specs,
		CreatedAt:  j.CreatedAt,
		QueuedAt:   j.QueuedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
	if j.Result != nil {
		resp.Output = j.Result.Output
		resp.Error = j.Result.Err
	}
	return resp
}

// ResultResponse — ответ с итогом задания.
type ResultResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StatsResponse — ответ со счётчиками задания.
type StatsResponse struct {
	Packets  uint64 `json:"packets"`
	Bytes    uint64 `json:"bytes"`
	BytesOut uint64 `json:"bytes_out"`
	Errors   uint64 `json:"errors"`
	Duration string `json:"duration"`
}

// StatsFromCounters конвертирует domain.Counters в StatsResponse.
func StatsFromCounters(c domain.Counters) StatsResponse {
	return StatsResponse{
		Packets:  c.Packets,
		Bytes:    c.Bytes,
		BytesOut: c.BytesOut,
		Errors:   c.Errors,
		Duration: c.Duration.String(),
	}
}

// JobStatsResponse — счётчики одного задания в общем списке.
type JobStatsResponse struct {
	JobID uuid.UUID `json:"job_id"`
	StatsResponse
}

// AreaResponse — статистика одной области хранения.
type AreaResponse struct {
	Area    string `json:"area"`
	Packets int64  `json:"packets"`
}

// QueuesResponse — размеры очередей планировщика.
type QueuesResponse struct {
	Waiting  int `json:"waiting"`
	Running  int `json:"running"`
	Finished int `json:"finished"`
}

// StateResponse — одна запись state по тегу.
// Payload отдаётся как есть: для сводок заданий это JSON,
// для чужих тегов — произвольные байты в base64.
type StateResponse struct {
	Tag     string          `json:"tag"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Raw     []byte          `json:"raw,omitempty"`
}

// StateFromPayload собирает StateResponse, различая JSON и сырые байты.
func StateFromPayload(tag string, payload []byte) StateResponse {
	if json.Valid(payload) {
		return StateResponse{Tag: tag, Payload: payload}
	}
	return StateResponse{Tag: tag, Raw: payload}
}

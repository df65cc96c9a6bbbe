package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SubmitJob разбирает текст pipeline и ставит задание в очередь.
// POST /api/v1/jobs
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Pipeline) == "" {
		BadRequest(w, "pipeline is required")
		return
	}

	job, err := h.engine.Submit(req.Pipeline)
	if HandleEngineError(w, h.logger, err, "") {
		return
	}

	Created(w, JobFromDomain(job))
}

// ListJobs возвращает все известные задания.
// GET /api/v1/jobs
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.engine.List()
	if HandleEngineError(w, h.logger, err, "") {
		return
	}

	result := make([]JobResponse, len(jobs))
	for i, job := range jobs {
		result[i] = JobFromDomain(job)
	}

	List(w, result, len(result))
}

// GetJob возвращает задание по ID.
// GET /api/v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.engine.Job(id)
	if HandleEngineError(w, h.logger, err, "job not found") {
		return
	}

	Success(w, JobFromDomain(job))
}

// GetJobResult возвращает итог завершённого задания.
// GET /api/v1/jobs/{id}/result
func (h *Handler) GetJobResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	result, err := h.engine.Result(id)
	if HandleEngineError(w, h.logger, err, "job not found") {
		return
	}

	Success(w, ResultResponse{Output: result.Output, Error: result.Err})
}

// GetJobStats возвращает счётчики задания.
// GET /api/v1/jobs/{id}/stats
func (h *Handler) GetJobStats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	counters, ok := h.engine.Counters(id)
	if !ok {
		NotFound(w, "no stats for job")
		return
	}

	Success(w, StatsFromCounters(counters))
}

// CancelJob отменяет задание.
// POST /api/v1/jobs/{id}/cancel
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	if err := h.engine.Cancel(id); HandleEngineError(w, h.logger, err, "job not found") {
		return
	}

	job, err := h.engine.Job(id)
	if HandleEngineError(w, h.logger, err, "job not found") {
		return
	}

	Success(w, JobFromDomain(job))
}

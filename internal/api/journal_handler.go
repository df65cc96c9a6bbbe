package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/skyfetch/internal/repo"
)

// defaultJournalLimit — лимит по умолчанию для списка журнала.
const defaultJournalLimit = 50

// ListJournal возвращает последние финальные задания из журнала БД.
// GET /api/v1/journal?limit=N
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		Unavailable(w, "journal requires a database")
		return
	}

	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			BadRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	jobs, err := h.journal.ListRecent(r.Context(), limit)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	result := make([]JobResponse, len(jobs))
	for i, job := range jobs {
		result[i] = JobFromDomain(job)
	}

	List(w, result, len(result))
}

// GetJournalJob возвращает финальное задание из журнала БД.
// В отличие от GET /jobs/{id} переживает рестарт демона.
// GET /api/v1/journal/{id}
func (h *Handler) GetJournalJob(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		Unavailable(w, "journal requires a database")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.journal.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		NotFound(w, "job not found in journal")
		return
	}
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, JobFromDomain(job))
}

// GetArea возвращает статистику области хранения.
// GET /api/v1/areas/{area}
func (h *Handler) GetArea(w http.ResponseWriter, r *http.Request) {
	if h.areas == nil {
		Unavailable(w, "area stats require a database")
		return
	}

	area := r.PathValue("area")

	n, err := h.areas.CountByArea(r.Context(), area)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, AreaResponse{Area: area, Packets: n})
}

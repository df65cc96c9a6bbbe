package api

import (
	"net/http"
	"sort"
)

// ListKinds возвращает реестр видов задач.
// GET /api/v1/kinds
func (h *Handler) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := h.engine.Kinds()
	List(w, kinds, len(kinds))
}

// GetQueues возвращает размеры очередей планировщика.
// GET /api/v1/queues
func (h *Handler) GetQueues(w http.ResponseWriter, r *http.Request) {
	waiting, running, finished, err := h.engine.QueueLens()
	if HandleEngineError(w, h.logger, err, "") {
		return
	}

	Success(w, QueuesResponse{Waiting: waiting, Running: running, Finished: finished})
}

// ListStats возвращает счётчики всех заданий.
// GET /api/v1/stats
func (h *Handler) ListStats(w http.ResponseWriter, r *http.Request) {
	all := h.engine.CountersAll()

	result := make([]JobStatsResponse, 0, len(all))
	for id, c := range all {
		result = append(result, JobStatsResponse{JobID: id, StatsResponse: StatsFromCounters(c)})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].JobID.String() < result[j].JobID.String()
	})

	List(w, result, len(result))
}

// ListStateTags возвращает все известные теги state.
// GET /api/v1/state
func (h *Handler) ListStateTags(w http.ResponseWriter, r *http.Request) {
	tags := h.engine.StateTags()
	sort.Strings(tags)
	List(w, tags, len(tags))
}

// GetState возвращает запись state по тегу.
// GET /api/v1/state/{tag}
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")

	payload, ok := h.engine.StateGet(tag)
	if !ok {
		NotFound(w, "no state for tag")
		return
	}

	Success(w, StateFromPayload(tag, payload))
}

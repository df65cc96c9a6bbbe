package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Jobs
	mux.Handle("POST /api/v1/jobs", chain(http.HandlerFunc(h.SubmitJob)))
	mux.Handle("GET /api/v1/jobs", chain(http.HandlerFunc(h.ListJobs)))
	mux.Handle("GET /api/v1/jobs/{id}", chain(http.HandlerFunc(h.GetJob)))
	mux.Handle("GET /api/v1/jobs/{id}/result", chain(http.HandlerFunc(h.GetJobResult)))
	mux.Handle("GET /api/v1/jobs/{id}/stats", chain(http.HandlerFunc(h.GetJobStats)))
	mux.Handle("POST /api/v1/jobs/{id}/cancel", chain(http.HandlerFunc(h.CancelJob)))

	// Engine introspection
	mux.Handle("GET /api/v1/kinds", chain(http.HandlerFunc(h.ListKinds)))
	mux.Handle("GET /api/v1/queues", chain(http.HandlerFunc(h.GetQueues)))
	mux.Handle("GET /api/v1/stats", chain(http.HandlerFunc(h.ListStats)))
	mux.Handle("GET /api/v1/state", chain(http.HandlerFunc(h.ListStateTags)))
	mux.Handle("GET /api/v1/state/{tag}", chain(http.HandlerFunc(h.GetState)))

	// Journal and storage areas (database-backed)
	mux.Handle("GET /api/v1/journal", chain(http.HandlerFunc(h.ListJournal)))
	mux.Handle("GET /api/v1/journal/{id}", chain(http.HandlerFunc(h.GetJournalJob)))
	mux.Handle("GET /api/v1/areas/{area}", chain(http.HandlerFunc(h.GetArea)))
}

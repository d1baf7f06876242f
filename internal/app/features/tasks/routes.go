// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

// Routes returns the task endpoints, mounted under /api/tasks behind the
// bearer-token middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/{projectID}", h.HandleListByProject)
	r.Patch("/{taskID}", h.HandleSetStatus)
	r.Patch("/{taskID}/assign", h.HandleAssign)
	r.Post("/{taskID}/comment", h.HandleComment)
	return r
}

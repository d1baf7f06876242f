// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// Routes returns the project endpoints, mounted under /api/projects
// behind the bearer-token middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/{userID}", h.HandleList)
	r.Delete("/{projectID}", h.HandleDelete)
	r.Post("/{projectID}/invite", h.HandleInvite)
	return r
}

// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns the user endpoints, mounted under /api/users behind the
// bearer-token middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Put("/{userID}", h.HandleUpdate)
	return r
}

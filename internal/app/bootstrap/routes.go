// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"

	authfeature "github.com/dalemusser/taskhub/internal/app/features/auth"
	healthfeature "github.com/dalemusser/taskhub/internal/app/features/health"
	projectsfeature "github.com/dalemusser/taskhub/internal/app/features/projects"
	tasksfeature "github.com/dalemusser/taskhub/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/taskhub/internal/app/features/users"
	sysauth "github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// The API splits into two groups: the public endpoints (health check,
// register, login) and everything else, which sits behind the bearer-token
// middleware. Handlers never read identity from request bodies; the
// middleware verifies the token once and puts the identity in the request
// context.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens := sysauth.NewTokens(appCfg.JWTSecret, appCfg.TokenExpiry)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		// Public: registration and login
		authHandler := authfeature.NewHandler(deps.MongoDatabase, tokens, logger)
		api.Mount("/", authfeature.Routes(authHandler))

		// Everything else requires a valid session token
		api.Group(func(private chi.Router) {
			private.Use(tokens.RequireAuth)

			projectsHandler := projectsfeature.NewHandler(deps.MongoDatabase, deps.MongoClient, logger)
			private.Mount("/projects", projectsfeature.Routes(projectsHandler))

			usersHandler := usersfeature.NewHandler(deps.MongoDatabase, logger)
			private.Mount("/users", usersfeature.Routes(usersHandler))

			tasksHandler := tasksfeature.NewHandler(deps.MongoDatabase, logger)
			private.Mount("/tasks", tasksfeature.Routes(tasksHandler))
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: splitOrigins(appCfg.CORSAllowedOrigins),
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler(r), nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

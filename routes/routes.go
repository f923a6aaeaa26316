package routes

import (
	"net/http"

	"mentorai/tutor/handlers"
	"mentorai/tutor/middleware"
)

// RegisterAllRoutes registers all application routes
func RegisterAllRoutes(mux *http.ServeMux, h *handlers.Handler) {
	RegisterChatRoutes(mux, h)
	RegisterAIRoutes(mux, h)
	mux.HandleFunc("GET /health", h.HealthHandler)
}

// NewRouter builds the full handler stack: routes wrapped in CORS, request
// logging and optional bearer auth.
func NewRouter(h *handlers.Handler, jwtSecret string) http.Handler {
	mux := http.NewServeMux()
	RegisterAllRoutes(mux, h)

	return middleware.Chain(
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware,
		middleware.AuthMiddleware(jwtSecret),
	)(mux)
}

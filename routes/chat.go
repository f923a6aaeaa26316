package routes

import (
	"net/http"

	"mentorai/tutor/handlers"
)

// RegisterChatRoutes registers all chat-related routes
func RegisterChatRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /chat/state", h.StateHandler)
	mux.HandleFunc("POST /chat", h.ChatHandler)
	mux.HandleFunc("GET /chat/messages", h.GetMessagesHandler)
	mux.HandleFunc("PUT /chat/active", h.SelectSessionHandler)

	mux.HandleFunc("POST /chat/sessions", h.CreateSessionHandler)
	mux.HandleFunc("PATCH /chat/sessions", h.UpdateSessionHandler)
	mux.HandleFunc("DELETE /chat/sessions", h.DeleteSessionHandler)
	mux.HandleFunc("DELETE /chat/sessions/all", h.ClearSessionsHandler)
}

// RegisterAIRoutes registers the completion endpoint
func RegisterAIRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("POST /ai-chat", h.AIChatHandler)
}

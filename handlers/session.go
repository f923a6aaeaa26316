package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"mentorai/tutor/chat"
	"mentorai/tutor/types"
)

// StateHandler returns the session list, the active transcript, the busy
// flag and any pending notices.
func (h *Handler) StateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

func (h *Handler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := h.ctrl.NewChat(r.Context())
	h.log.WithField("session_id", id).Info("Chat session created")

	sum, ok := h.ctrl.Summary(id)
	if !ok {
		// Deleted between create and lookup.
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, types.SessionResponse{Success: true, Session: sum})
}

func (h *Handler) SelectSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("id")
	if sessionID == "" {
		h.log.Warn("Missing session ID in request")
		writeError(w, "Missing session ID", http.StatusBadRequest)
		return
	}

	h.ctrl.SelectSession(sessionID)
	writeJSON(w, http.StatusOK, h.state())
}

func (h *Handler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("id")
	if sessionID == "" {
		h.log.Warn("Missing session ID in request")
		writeError(w, "Missing session ID", http.StatusBadRequest)
		return
	}

	if !h.ctrl.DeleteSession(r.Context(), sessionID) {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	h.log.WithField("session_id", sessionID).Info("Chat session deleted")
	writeJSON(w, http.StatusOK, h.state())
}

func (h *Handler) ClearSessionsHandler(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ClearAll(r.Context())
	h.log.Info("All chat sessions cleared")
	writeJSON(w, http.StatusOK, h.state())
}

func (h *Handler) UpdateSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("id")
	if sessionID == "" {
		h.log.Warn("Missing session ID in request")
		writeError(w, "Missing session ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Title string `json:"title"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Title) == "" {
		h.log.Warn("Invalid or missing title in request body: ", err)
		writeError(w, "Invalid or missing title", http.StatusBadRequest)
		return
	}

	if !h.ctrl.RenameSession(r.Context(), sessionID, body.Title) {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}

	sum, ok := h.ctrl.Summary(sessionID)
	if !ok {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, types.SessionResponse{Success: true, Session: sum})
}

func (h *Handler) state() types.StateResponse {
	v := h.ctrl.View()
	return stateResponse(v, h.notices.Drain())
}

func stateResponse(v chat.View, notices []types.Notice) types.StateResponse {
	return types.StateResponse{
		Success:         true,
		Sessions:        v.Sessions,
		ActiveSessionID: v.ActiveID,
		Active:          v.Active,
		Busy:            v.Busy,
		Notices:         notices,
	}
}

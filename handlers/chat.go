package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"mentorai/tutor/chat"
	"mentorai/tutor/middleware"
	"mentorai/tutor/types"
)

// ChatHandler sends a message into the active session and returns the
// exchange. A failed completion still answers 200 with the fallback reply
// and failed=true.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	log := h.log
	if userID, ok := middleware.UserID(r.Context()); ok {
		log = log.WithField("user_id", userID)
	}

	res, err := h.ctrl.SendMessage(r.Context(), req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, "Missing message", http.StatusBadRequest)
		return
	case errors.Is(err, chat.ErrBusy):
		writeError(w, "A reply is still pending for this chat", http.StatusConflict)
		return
	case err != nil:
		log.Error("Failed to send message: ", err)
		writeError(w, "Could not send message", http.StatusInternalServerError)
		return
	}

	log.WithFields(logrus.Fields{
		"session_id": res.SessionID,
		"failed":     res.Failed,
	}).Info("Chat exchange completed")

	resp := types.ChatResponse{
		Success:     true,
		SessionID:   res.SessionID,
		UserMessage: res.UserMessage.Content,
		AIResponse:  res.Reply.Content,
		Failed:      res.Failed,
	}
	if res.Failed {
		resp.ErrorMessage = "Failed to get a response from the AI tutor."
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMessagesHandler returns the transcript of session_id, or of the active
// session when none is given.
func (h *Handler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	var (
		sess types.ChatSession
		ok   bool
	)
	if sessionID == "" {
		if v := h.ctrl.View(); v.Active != nil {
			sess, ok = *v.Active, true
		}
	} else {
		sess, ok = h.ctrl.Session(sessionID)
	}
	if !ok {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, types.MessagesResponse{
		Success:  true,
		Messages: sess.Messages,
	})
}

// AIChatHandler answers one message with the configured provider. It is the
// default completion endpoint for the chat client.
func (h *Handler) AIChatHandler(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeJSON(w, http.StatusServiceUnavailable, types.AIChatResponse{Error: "AI provider not configured"})
		return
	}

	var req types.AIChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.AIChatResponse{Error: "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, types.AIChatResponse{Error: "Message is required"})
		return
	}

	log := h.log.WithFields(logrus.Fields{
		"provider": h.provider.Name(),
		"model":    h.provider.Model(),
	})

	reply, err := h.provider.Generate(r.Context(), req.Message)
	if err != nil {
		log.WithError(err).Error("Provider request failed")
		writeJSON(w, http.StatusInternalServerError, types.AIChatResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, types.AIChatResponse{
		Response: reply,
		Provider: h.provider.Name(),
		Model:    h.provider.Model(),
	})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": len(h.ctrl.View().Sessions),
	})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"mentorai/tutor/config"
	"mentorai/tutor/types"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		config.Logger.Warn("Failed to encode response: ", err)
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	resp := types.ErrorResponse{
		Success:      false,
		ErrorMessage: message,
	}
	writeJSON(w, status, resp)
}

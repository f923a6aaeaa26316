package types

import "time"

// SessionSummary is a session without its transcript, for list views.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
	Active       bool      `json:"active"`
	Busy         bool      `json:"busy"`
}

type Notice struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	At          time.Time `json:"at"`
}

type StateResponse struct {
	Success         bool             `json:"success"`
	Sessions        []SessionSummary `json:"sessions"`
	ActiveSessionID string           `json:"active_session_id,omitempty"`
	Active          *ChatSession     `json:"active,omitempty"`
	Busy            bool             `json:"busy"`
	Notices         []Notice         `json:"notices,omitempty"`
}

type SessionResponse struct {
	Success bool           `json:"success"`
	Session SessionSummary `json:"session"`
}

type ErrorResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
}

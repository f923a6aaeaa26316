package handlers

import (
	"github.com/sirupsen/logrus"

	"mentorai/tutor/chat"
	"mentorai/tutor/config"
	"mentorai/tutor/llm"
	"mentorai/tutor/notify"
)

const maxBodyBytes = 64 << 10

// Handler serves the chat intents over HTTP.
type Handler struct {
	ctrl     *chat.Controller
	notices  *notify.Buffer
	provider llm.Provider
	log      logrus.FieldLogger
}

// New wires a Handler. A nil provider disables POST /ai-chat.
func New(ctrl *chat.Controller, notices *notify.Buffer, provider llm.Provider) *Handler {
	if notices == nil {
		notices = notify.NewBuffer(0)
	}
	return &Handler{
		ctrl:     ctrl,
		notices:  notices,
		provider: provider,
		log:      config.Logger,
	}
}

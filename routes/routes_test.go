package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorai/tutor/chat"
	"mentorai/tutor/handlers"
	"mentorai/tutor/notify"
	"mentorai/tutor/sessions"
	"mentorai/tutor/store"
	"mentorai/tutor/supabase"
	"mentorai/tutor/types"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, message string) (string, error) {
	return "echo: " + message, nil
}

func newServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	notices := notify.NewBuffer(0)
	repo := sessions.NewRepository(store.NewSessionStore(store.NewMemoryBackend(), ""), sessions.WithLogger(log))
	ctrl := chat.NewController(repo, echoCompleter{}, chat.WithNotifier(notices), chat.WithLogger(log))

	srv := httptest.NewServer(NewRouter(handlers.New(ctrl, notices, nil), secret))
	t.Cleanup(srv.Close)
	return srv
}

func send(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_ChatFlow(t *testing.T) {
	srv := newServer(t, "")

	resp := send(t, http.MethodPost, srv.URL+"/chat", "", `{"message":"Hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, http.MethodGet, srv.URL+"/chat/state", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state types.StateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.NotNil(t, state.Active)
	require.Len(t, state.Active.Messages, 2)
	assert.Equal(t, "echo: Hello", state.Active.Messages[1].Content)

	resp = send(t, http.MethodDelete, srv.URL+"/chat/sessions/all", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, http.MethodDelete, srv.URL+"/chat/sessions?id="+state.ActiveSessionID, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = send(t, http.MethodPost, srv.URL+"/ai-chat", "", `{"message":"Hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = send(t, http.MethodGet, srv.URL+"/chat", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRouter_Auth(t *testing.T) {
	srv := newServer(t, "secret")

	assert.Equal(t, http.StatusUnauthorized, send(t, http.MethodGet, srv.URL+"/chat/state", "", "").StatusCode)
	assert.Equal(t, http.StatusOK, send(t, http.MethodGet, srv.URL+"/health", "", "").StatusCode)
	assert.Equal(t, http.StatusNoContent, send(t, http.MethodOptions, srv.URL+"/chat", "", "").StatusCode)

	token, err := supabase.GenerateTestJWT("student-42", "secret", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, send(t, http.MethodGet, srv.URL+"/chat/state", token, "").StatusCode)
}

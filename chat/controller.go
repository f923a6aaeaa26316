// Package chat drives a conversation: it turns user intents into session
// mutations and runs the send/reply exchange with the completion client.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"mentorai/tutor/config"
	"mentorai/tutor/notify"
	"mentorai/tutor/sessions"
	"mentorai/tutor/types"
)

// Completer produces the assistant reply for a single user message.
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

// State is the per-session send state.
type State int

const (
	Idle State = iota
	Sending
)

func (s State) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// SendResult describes a completed exchange.
type SendResult struct {
	SessionID   string
	UserMessage types.Message
	Reply       types.Message
	// Failed is set when Reply is the fallback text; Err holds the cause.
	Failed bool
	Err    error
	// Stored is false when the session was deleted before the reply arrived.
	Stored bool
}

// View is what a surface renders.
type View struct {
	Sessions []types.SessionSummary
	ActiveID string
	Active   *types.ChatSession
	Busy     bool
}

type Option func(*Controller)

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = l }
}

// WithTimeout bounds each completion call. Zero means no bound beyond the client's own.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

func WithMessageIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

type Controller struct {
	repo     *sessions.Repository
	client   Completer
	notifier notify.Notifier
	log      logrus.FieldLogger
	timeout  time.Duration
	newID    func() string

	mu      sync.Mutex
	sending map[string]struct{}
}

func NewController(repo *sessions.Repository, client Completer, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		client:   client,
		notifier: notify.Discard,
		log:      config.Logger,
		newID:    func() string { return ulid.Make().String() },
		sending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewChat creates an empty session and makes it active.
func (c *Controller) NewChat(ctx context.Context) string {
	return c.repo.CreateSession(ctx)
}

// SelectSession points the active session at id. Unknown ids are accepted
// and read back as no active session.
func (c *Controller) SelectSession(id string) {
	c.repo.SetActive(id)
}

func (c *Controller) DeleteSession(ctx context.Context, id string) bool {
	if !c.repo.DeleteSession(ctx, id) {
		return false
	}
	c.notifier.Notify(notify.Info("Chat Deleted", "The chat session has been removed."))
	return true
}

func (c *Controller) ClearAll(ctx context.Context) {
	c.repo.ClearAll(ctx)
	c.notifier.Notify(notify.Info("All Chats Cleared", "Your chat history has been wiped."))
}

func (c *Controller) RenameSession(ctx context.Context, id, title string) bool {
	return c.repo.RenameSession(ctx, id, title)
}

// SendMessage posts text into the active session, creating one when none is
// active, and waits for the assistant reply. The user message is stored
// before the completion call. A failed call stores the fallback reply and
// raises a notice instead of returning an error.
//
// The call runs detached from ctx cancellation so an abandoned request still
// records its reply.
func (c *Controller) SendMessage(ctx context.Context, text string) (SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return SendResult{}, ErrEmptyMessage
	}

	ctx = context.WithoutCancel(ctx)
	sessionID, err := c.begin(ctx)
	if err != nil {
		return SendResult{}, err
	}
	defer c.finish(sessionID)

	log := c.log.WithField("session_id", sessionID)
	res := SendResult{SessionID: sessionID}

	res.UserMessage = c.message(types.RoleUser, text)
	if !c.repo.AppendMessage(ctx, sessionID, res.UserMessage) {
		log.Info("Session removed before the message was stored, not sending")
		return res, nil
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := c.client.Complete(callCtx, text)
	if err != nil {
		log.WithError(err).Error("Failed to get AI response")
		c.notifier.Notify(notify.Warning("An error occurred", "Failed to get a response from the AI tutor."))
		res.Failed = true
		res.Err = err
		reply = config.FallbackReply
	} else {
		log.WithField("duration", time.Since(start).String()).Debug("AI response received")
	}

	res.Reply = c.message(types.RoleAssistant, reply)
	res.Stored = c.repo.AppendMessage(ctx, sessionID, res.Reply)
	if !res.Stored {
		log.Info("Session removed while waiting for a reply, dropping it")
	}
	return res, nil
}

// begin resolves the target session and marks it Sending. A new session is
// created outside c.mu so its store write never stalls View or State.
func (c *Controller) begin(ctx context.Context) (string, error) {
	c.mu.Lock()
	sessionID := c.repo.ActiveID()
	if sessionID != "" {
		defer c.mu.Unlock()
		return c.claimLocked(sessionID)
	}
	c.mu.Unlock()

	sessionID = c.repo.CreateSession(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.claimLocked(sessionID)
}

func (c *Controller) claimLocked(sessionID string) (string, error) {
	if _, busy := c.sending[sessionID]; busy {
		c.log.WithField("session_id", sessionID).Debug("Send ignored, reply pending")
		return "", ErrBusy
	}
	c.sending[sessionID] = struct{}{}
	return sessionID, nil
}

func (c *Controller) finish(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sending, sessionID)
}

func (c *Controller) message(role types.Role, content string) types.Message {
	return types.Message{ID: c.newID(), Role: role, Content: content}
}

// Session returns a copy of the session with the given id.
func (c *Controller) Session(id string) (types.ChatSession, bool) {
	return c.repo.Session(id)
}

func (c *Controller) State(sessionID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sending[sessionID]; ok {
		return Sending
	}
	return Idle
}

// Busy reports whether the active session is waiting for a reply.
func (c *Controller) Busy() bool {
	id := c.repo.ActiveID()
	return id != "" && c.State(id) == Sending
}

// Summary describes a single session without building the full View.
func (c *Controller) Summary(id string) (types.SessionSummary, bool) {
	sess, ok := c.repo.Session(id)
	if !ok {
		return types.SessionSummary{}, false
	}
	return summarize(sess, c.repo.ActiveID() == id, c.State(id) == Sending), true
}

func (c *Controller) View() View {
	all := c.repo.Sessions()
	activeID := c.repo.ActiveID()

	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{Sessions: make([]types.SessionSummary, 0, len(all)), ActiveID: activeID}
	for i := range all {
		_, busy := c.sending[all[i].ID]
		v.Sessions = append(v.Sessions, summarize(all[i], all[i].ID == activeID, busy))
		if all[i].ID == activeID {
			active := all[i]
			v.Active = &active
			v.Busy = busy
		}
	}
	return v
}

func summarize(s types.ChatSession, active, busy bool) types.SessionSummary {
	return types.SessionSummary{
		ID:           s.ID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt.Time,
		MessageCount: len(s.Messages),
		Active:       active,
		Busy:         busy,
	}
}

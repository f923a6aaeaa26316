// Package sessions owns the in-memory session collection and the active
// session pointer, and writes every change through to a SessionStore.
package sessions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mentorai/tutor/config"
	"mentorai/tutor/notify"
	"mentorai/tutor/store"
	"mentorai/tutor/types"
)

// Store is the persistence the repository writes through to.
type Store interface {
	Load(ctx context.Context) ([]types.ChatSession, error)
	Save(ctx context.Context, sessions []types.ChatSession) error
}

type Option func(*Repository)

func WithNotifier(n notify.Notifier) Option {
	return func(r *Repository) { r.notifier = n }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Repository) { r.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

// Repository is the single source of truth for sessions during the process
// lifetime. It is safe for concurrent use.
type Repository struct {
	mu       sync.Mutex
	sessions []types.ChatSession // newest first
	activeID string              // "" means no active session
	version  uint64

	saveMu       sync.Mutex
	savedVersion uint64

	store    Store
	notifier notify.Notifier
	log      logrus.FieldLogger
	now      func() time.Time
	newID    func() string
}

func NewRepository(st Store, opts ...Option) *Repository {
	r := &Repository{
		sessions: []types.ChatSession{},
		store:    st,
		notifier: notify.Discard,
		log:      config.Logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory collection with the persisted one and points
// the active session at the most recent session, if any. Unreadable or
// corrupt data leaves an empty collection and raises a single warning.
func (r *Repository) Load(ctx context.Context) error {
	loaded, err := r.store.Load(ctx)
	if err != nil {
		r.log.WithError(err).Error("Failed to load chat sessions")
		r.notifier.Notify(notify.Warning("Error", "Could not load your previous chat sessions."))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = loaded
	r.activeID = ""
	if len(loaded) > 0 {
		r.activeID = loaded[0].ID
	}
	r.log.WithField("sessions", len(loaded)).Info("Loaded chat sessions")
	return err
}

// CreateSession prepends an empty session, makes it active and returns its id.
func (r *Repository) CreateSession(ctx context.Context) string {
	r.mu.Lock()
	id := r.uniqueIDLocked()
	sess := types.ChatSession{
		ID:        id,
		Title:     config.PlaceholderTitle,
		CreatedAt: types.NewTimestamp(r.now()),
		Messages:  []types.Message{},
	}
	r.sessions = append([]types.ChatSession{sess}, r.sessions...)
	r.activeID = id
	snap := r.commitLocked()
	r.mu.Unlock()

	r.log.WithField("session_id", id).Debug("Created chat session")
	r.persist(ctx, snap)
	return id
}

// DeleteSession removes the session if present. Deleting the active session
// moves the pointer to the new front of the collection, or clears it.
func (r *Repository) DeleteSession(ctx context.Context, id string) bool {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.log.WithField("session_id", id).Debug("Delete of unknown session ignored")
		return false
	}

	next := make([]types.ChatSession, 0, len(r.sessions)-1)
	next = append(next, r.sessions[:idx]...)
	next = append(next, r.sessions[idx+1:]...)
	r.sessions = next

	if r.activeID == id {
		r.activeID = ""
		if len(r.sessions) > 0 {
			r.activeID = r.sessions[0].ID
		}
	}
	snap := r.commitLocked()
	r.mu.Unlock()

	r.log.WithField("session_id", id).Debug("Deleted chat session")
	r.persist(ctx, snap)
	return true
}

// ClearAll empties the collection and clears the active pointer.
func (r *Repository) ClearAll(ctx context.Context) {
	r.mu.Lock()
	r.sessions = []types.ChatSession{}
	r.activeID = ""
	snap := r.commitLocked()
	r.mu.Unlock()

	r.log.Debug("Cleared all chat sessions")
	r.persist(ctx, snap)
}

// AppendMessage appends msg to the named session. A session that no longer
// exists (deleted while a reply was in flight) makes this a logged no-op.
func (r *Repository) AppendMessage(ctx context.Context, sessionID string, msg types.Message) bool {
	r.mu.Lock()
	idx := r.indexLocked(sessionID)
	if idx < 0 {
		r.mu.Unlock()
		r.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"message_id": msg.ID,
		}).Debug("Append to missing session ignored")
		return false
	}

	sess := r.sessions[idx]
	msgs := make([]types.Message, len(sess.Messages), len(sess.Messages)+1)
	copy(msgs, sess.Messages)
	sess.Messages = append(msgs, msg)
	r.sessions[idx] = sess
	snap := r.commitLocked()
	r.mu.Unlock()

	r.persist(ctx, snap)
	return true
}

// RenameSession rewrites a session title. Blank titles and unknown ids are ignored.
func (r *Repository) RenameSession(ctx context.Context, id, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.log.WithField("session_id", id).Debug("Rename of unknown session ignored")
		return false
	}
	r.sessions[idx].Title = title
	snap := r.commitLocked()
	r.mu.Unlock()

	r.persist(ctx, snap)
	return true
}

// SetActive moves the active pointer without validating id; a dangling id
// simply reads back as no active session.
func (r *Repository) SetActive(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeID = id
}

// Active returns a copy of the active session.
func (r *Repository) Active() (types.ChatSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(r.activeID)
	if idx < 0 {
		return types.ChatSession{}, false
	}
	return r.sessions[idx].Clone(), true
}

// ActiveID returns the id of the active session if it exists, else "".
func (r *Repository) ActiveID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(r.activeID) < 0 {
		return ""
	}
	return r.activeID
}

func (r *Repository) Session(id string) (types.ChatSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return types.ChatSession{}, false
	}
	return r.sessions[idx].Clone(), true
}

// Sessions returns a deep copy of the collection, newest first.
func (r *Repository) Sessions() []types.ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAll(r.sessions)
}

func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type snapshot struct {
	version  uint64
	sessions []types.ChatSession
}

func (r *Repository) commitLocked() snapshot {
	r.version++
	return snapshot{version: r.version, sessions: cloneAll(r.sessions)}
}

// persist writes a snapshot unless a newer one has already been written.
// Failures are reported but the in-memory state stays authoritative.
func (r *Repository) persist(ctx context.Context, snap snapshot) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	if snap.version <= r.savedVersion {
		return
	}
	if err := r.store.Save(ctx, snap.sessions); err != nil {
		r.log.WithError(err).Warn("Failed to persist chat sessions")
		r.notifier.Notify(notify.Warning("Error", "Could not save your chat sessions. Changes may be lost on restart."))
		return
	}
	r.savedVersion = snap.version
}

func (r *Repository) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) uniqueIDLocked() string {
	for {
		id := r.newID()
		if id != "" && r.indexLocked(id) < 0 {
			return id
		}
	}
}

func cloneAll(in []types.ChatSession) []types.ChatSession {
	out := make([]types.ChatSession, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

var _ Store = (*store.SessionStore)(nil)

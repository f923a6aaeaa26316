package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"mentorai/tutor/config"
	"mentorai/tutor/types"
)

// SessionStore persists the whole session collection under one fixed key.
type SessionStore struct {
	backend Backend
	key     string
	log     logrus.FieldLogger
}

func NewSessionStore(backend Backend, key string) *SessionStore {
	if key == "" {
		key = config.StorageKey
	}
	return &SessionStore{
		backend: backend,
		key:     key,
		log:     config.Logger.WithField("key", key),
	}
}

func (s *SessionStore) Key() string { return s.key }

// Load returns the persisted collection. A missing key yields an empty
// collection and no error. An unreadable or corrupt value also yields an
// empty collection, together with an error describing why; the stored value
// is left as is.
func (s *SessionStore) Load(ctx context.Context) ([]types.ChatSession, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return []types.ChatSession{}, err
	}
	if !ok {
		return []types.ChatSession{}, nil
	}

	sessions, err := Decode(raw)
	if err != nil {
		return []types.ChatSession{}, &CorruptError{Key: s.key, Err: err}
	}
	return sessions, nil
}

// Save writes the full collection, or removes the key when it is empty.
func (s *SessionStore) Save(ctx context.Context, sessions []types.ChatSession) error {
	if len(sessions) == 0 {
		if err := s.backend.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("failed to remove sessions: %w", err)
		}
		s.log.Debug("Removed empty session collection")
		return nil
	}

	data, err := Encode(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	s.log.WithField("sessions", len(sessions)).Debug("Persisted session collection")
	return nil
}

// Encode renders the collection as compact JSON. The output is stable:
// Decode followed by Encode reproduces it byte for byte.
func Encode(sessions []types.ChatSession) ([]byte, error) {
	return json.Marshal(sessions)
}

// Decode parses and validates a stored collection.
func Decode(raw []byte) ([]types.ChatSession, error) {
	var sessions []types.ChatSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []types.ChatSession{}
	}

	seen := make(map[string]struct{}, len(sessions))
	for i := range sessions {
		sess := &sessions[i]
		if sess.ID == "" {
			return nil, fmt.Errorf("session %d has no id", i)
		}
		if _, dup := seen[sess.ID]; dup {
			return nil, fmt.Errorf("duplicate session id %q", sess.ID)
		}
		seen[sess.ID] = struct{}{}

		if sess.Messages == nil {
			sess.Messages = []types.Message{}
		}
		for j, msg := range sess.Messages {
			if !msg.Role.Valid() {
				return nil, fmt.Errorf("session %q message %d has unknown role %q", sess.ID, j, msg.Role)
			}
		}
	}
	return sessions, nil
}

// IsCorrupt reports whether err came from undecodable stored data.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}

package cmd

import (
	"context"
	"fmt"

	"mentorai/tutor/chat"
	"mentorai/tutor/config"
	"mentorai/tutor/llm"
	"mentorai/tutor/notify"
	"mentorai/tutor/sessions"
	"mentorai/tutor/store"
	"mentorai/tutor/supabase"
)

// openBackend builds the storage backend named by s.StoreBackend. The
// returned close function is never nil.
func openBackend(s config.Settings) (store.Backend, func() error, error) {
	noop := func() error { return nil }

	switch s.StoreBackend {
	case config.BackendFile, "":
		return store.NewFileBackend(s.DataDir), noop, nil
	case config.BackendMemory:
		return store.NewMemoryBackend(), noop, nil
	case config.BackendSQLite:
		db, err := store.OpenSQLite(s.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil
	case config.BackendSupabase:
		client, err := supabase.NewClient(s.SupabaseURL, s.SupabaseKey)
		if err != nil {
			return nil, noop, err
		}
		return supabase.NewKVBackend(client, s.SupabaseTable), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported store backend: %s (supported: %s, %s, %s, %s)",
			s.StoreBackend, config.BackendFile, config.BackendSQLite, config.BackendSupabase, config.BackendMemory)
	}
}

// app is the wired object graph shared by every command.
type app struct {
	repo    *sessions.Repository
	ctrl    *chat.Controller
	notices *notify.Buffer
	close   func() error
}

func newApp(ctx context.Context, s config.Settings) (*app, error) {
	backend, closeFn, err := openBackend(s)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", s.StoreBackend, err)
	}
	config.Logger.WithField("backend", s.StoreBackend).Debug("Session store opened")

	notices := notify.NewBuffer(0)
	repo := sessions.NewRepository(
		store.NewSessionStore(backend, config.StorageKey),
		sessions.WithNotifier(notices),
	)
	// A failed load is already reported as a notice; start empty.
	_ = repo.Load(ctx)

	client := llm.NewClient(s.CompletionURL, s.CompletionKey, s.CompletionTimeout)
	ctrl := chat.NewController(repo, client,
		chat.WithNotifier(notices),
		chat.WithTimeout(s.CompletionTimeout),
	)

	return &app{repo: repo, ctrl: ctrl, notices: notices, close: closeFn}, nil
}

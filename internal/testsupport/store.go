package testsupport

import (
	"context"
	"testing"

	"dubber/internal/config"
	"dubber/internal/session"
)

// MustOpenStore opens a session.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustStartSession starts a workspace for tests and closes it on cleanup.
func MustStartSession(t testing.TB, cfg *config.Config, store *session.Store) *session.Workspace {
	t.Helper()

	ws, err := session.Start(context.Background(), store, cfg.Paths.SessionsDir, "")
	if err != nil {
		t.Fatalf("session.Start: %v", err)
	}
	t.Cleanup(func() {
		_ = ws.Close()
	})
	return ws
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/remote"
	"github.com/racklinehq/rackline/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestLoadDocumentEmpty(t *testing.T) {
	st := openTestStore(t)

	doc, err := st.LoadDocument()
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if doc == nil || len(doc.Players) != 0 || len(doc.Matches) != 0 {
		t.Errorf("expected fresh empty document, got %+v", doc)
	}
	if doc.Filters != league.DefaultFilters() {
		t.Errorf("expected default filters, got %+v", doc.Filters)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	st := openTestStore(t)

	doc := league.NewDocument()
	p, err := doc.AddPlayer("Mark", "Captain")
	if err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	doc.SelectedPlayerID = &p.ID
	doc.Filters.From = "2025-06-01"

	if err := st.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	loaded, err := st.LoadDocument()
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if len(loaded.Players) != 1 || loaded.Players[0].Name != "Mark" {
		t.Errorf("player did not round-trip: %+v", loaded.Players)
	}
	if loaded.SelectedPlayerID == nil || *loaded.SelectedPlayerID != p.ID {
		t.Error("selected player is device-local state and must round-trip locally")
	}
	if loaded.Filters.From != "2025-06-01" {
		t.Error("filters are device-local state and must round-trip locally")
	}
	if loaded.UpdatedAt != doc.UpdatedAt {
		t.Errorf("revision marker changed across reload: %d != %d", loaded.UpdatedAt, doc.UpdatedAt)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	st := openTestStore(t)

	if sess, err := st.LoadSession(); err != nil || sess != nil {
		t.Fatalf("expected no session initially, got %+v, %v", sess, err)
	}

	if err := st.SaveSession(&session.Session{
		User: &session.User{Name: "Jo", Email: "jo@example.com"},
	}); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	sess, err := st.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if sess == nil || !sess.LoggedIn || sess.User.Email != "jo@example.com" {
		t.Errorf("session did not round-trip: %+v", sess)
	}

	if err := st.ClearSession(); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if sess, _ := st.LoadSession(); sess != nil {
		t.Error("session survived ClearSession")
	}
}

func TestRemoteConfigRoundTrip(t *testing.T) {
	st := openTestStore(t)

	cfg, err := st.LoadRemoteConfig()
	if err != nil {
		t.Fatalf("LoadRemoteConfig failed: %v", err)
	}
	if cfg.Enabled() {
		t.Error("expected disabled config initially")
	}

	if err := st.SaveRemoteConfig(&remote.Config{
		Type:        remote.TypeCloud,
		League:      "tuesday-league",
		DatabaseURL: "postgres://localhost/league",
	}); err != nil {
		t.Fatalf("SaveRemoteConfig failed: %v", err)
	}

	cfg, err = st.LoadRemoteConfig()
	if err != nil {
		t.Fatalf("LoadRemoteConfig failed: %v", err)
	}
	if cfg.Type != remote.TypeCloud || cfg.LeagueName() != "tuesday-league" {
		t.Errorf("config did not round-trip: %+v", cfg)
	}

	if err := st.ClearRemoteConfig(); err != nil {
		t.Fatalf("ClearRemoteConfig failed: %v", err)
	}
	cfg, _ = st.LoadRemoteConfig()
	if cfg.Enabled() {
		t.Error("config survived ClearRemoteConfig")
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "state.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed to create parent directories: %v", err)
	}
	defer st.Close()
}

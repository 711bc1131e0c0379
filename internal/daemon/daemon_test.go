package daemon

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/reconcile"
	"github.com/racklinehq/rackline/internal/store"
)

func newTestDaemon(t *testing.T, inbox string) (*Daemon, *reconcile.Reconciler) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "rackline.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	r := reconcile.New(league.NewDocument(), st, nil, log.New(io.Discard, "", 0), nil)
	s := reconcile.NewScheduler(r)
	t.Cleanup(s.Stop)

	d, err := New(r, s, &Config{
		InboxDir:       inbox,
		SettleInterval: 50 * time.Millisecond,
		Logger:         log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("failed to create daemon: %v", err)
	}
	return d, r
}

func writeBackup(t *testing.T, path string) {
	t.Helper()
	doc := league.NewDocument()
	if _, err := doc.AddPlayer("Alice", ""); err != nil {
		t.Fatalf("failed to add player: %v", err)
	}
	data, err := json.Marshal(doc.Portable())
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write backup: %v", err)
	}
}

func TestImportFileAdoptsValidBackup(t *testing.T) {
	dir := t.TempDir()
	d, r := newTestDaemon(t, "")

	path := filepath.Join(dir, "league-backup.json")
	writeBackup(t, path)

	if err := d.importFile(path); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	doc := r.Document()
	if len(doc.Players) != 1 || doc.Players[0].Name != "Alice" {
		t.Errorf("expected imported player, got %+v", doc.Players)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("imported file must be removed from the inbox")
	}
}

func TestImportFileRejectsInvalidBackup(t *testing.T) {
	dir := t.TempDir()
	d, r := newTestDaemon(t, "")

	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"players":"nope"}`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := d.importFile(path); err == nil {
		t.Fatal("expected invalid backup to be rejected")
	}
	if len(r.Document().Players) != 0 {
		t.Errorf("rejected import must not touch the document")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("rejected file must stay in place for inspection: %v", err)
	}
}

func TestDaemonImportsDroppedFile(t *testing.T) {
	inbox := t.TempDir()
	d, r := newTestDaemon(t, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	// Give the watcher time to attach before dropping the file.
	time.Sleep(200 * time.Millisecond)
	writeBackup(t, filepath.Join(inbox, "drop.json"))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.Document().Players) == 1 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(r.Document().Players) != 1 {
		t.Error("dropped backup was never imported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("daemon exited with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down")
	}
}

func TestDaemonStartFailsOnMissingInbox(t *testing.T) {
	d, _ := newTestDaemon(t, filepath.Join(t.TempDir(), "does-not-exist"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected an error for an unwatchable inbox directory")
	}
}

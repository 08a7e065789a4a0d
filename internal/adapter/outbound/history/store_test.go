package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesMissingDirectory(t *testing.T) {
	// Fresh install: the configured directory does not exist yet.
	path := filepath.Join(t.TempDir(), ".fleetctl", "history.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() into missing directory error = %v", err)
	}
	defer store.Close()

	if err := store.Record(ctx, Entry{Command: "login", Outcome: "ok"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := []Entry{
		{Command: "drivers list", Arguments: "--status pending", Outcome: "ok", Duration: 120 * time.Millisecond},
		{Command: "drivers approve", Arguments: "42", Outcome: "ok", Duration: 340 * time.Millisecond},
		{Command: "settings set", Arguments: "commission_rate 20", Outcome: "error", Error: "validation failed"},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Newest first.
	if got[0].Command != "settings set" || got[0].Outcome != "error" || got[0].Error != "validation failed" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[2].Command != "drivers list" || got[2].Duration != 120*time.Millisecond {
		t.Errorf("got[2] = %+v", got[2])
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestRecentClampsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, Entry{Command: "whoami", Outcome: "ok"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}

	// Non-positive limit falls back to the default rather than returning
	// nothing.
	got, err = store.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := store.Record(ctx, Entry{Command: "dashboard show", Outcome: "ok"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Prune(ctx, 3); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	got, err := store.Recent(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d after prune, want 3", len(got))
	}
	// The survivors are the highest ids.
	if got[0].ID <= got[1].ID || got[1].ID <= got[2].ID {
		t.Errorf("ids not descending: %d, %d, %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Record(ctx, Entry{Command: "login", Outcome: "ok"}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	// Re-opening applies the migration again without clobbering data.
	second, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	got, err := second.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Command != "login" {
		t.Errorf("got = %+v", got)
	}
}

package session

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	store := newTestStore(t)

	sc, err := store.Load()
	if err != nil {
		t.Fatalf("Load on fresh store failed: %v", err)
	}
	if sc.ActiveBoardID != "" || sc.ActiveWorkspaceID != "" {
		t.Errorf("fresh store = %+v, want empty context", sc)
	}
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := Context{ActiveBoardID: "b1", ActiveWorkspaceID: "w1"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestSQLiteStore_SaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Context{ActiveBoardID: "b1"}); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := store.Save(Context{ActiveBoardID: "b2", ActiveWorkspaceID: "w1"}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.ActiveBoardID != "b2" || got.ActiveWorkspaceID != "w1" {
		t.Errorf("Load = %+v, want b2/w1 (single-row overwrite)", got)
	}
}

func TestSQLiteStore_ClearPersists(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Context{ActiveBoardID: "b1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(Context{}); err != nil {
		t.Fatalf("Save(empty) failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.ActiveBoardID != "" {
		t.Errorf("ActiveBoardID = %q, want cleared", got.ActiveBoardID)
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSQLiteStore(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Save(Context{ActiveBoardID: "b1", ActiveWorkspaceID: "w1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if got.ActiveBoardID != "b1" || got.ActiveWorkspaceID != "w1" {
		t.Errorf("Load after reopen = %+v, want b1/w1", got)
	}
}

func TestDefaultConfig_EnvOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "custom")
	t.Setenv("MCP_TRELLO_DATA_DIR", override)

	cfg := DefaultConfig()
	if cfg.DataDir != override {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, override)
	}
}

package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/nocycle/internal/testutil"
	"github.com/leapstack-labs/nocycle/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(testutil.NewTestLogger(t))

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_OpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".nocycle", "nested", "state.db")
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	version, err := store.GetMigrationVersion()
	if err != nil {
		t.Fatalf("failed to read migration version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected migration version 1, got %d", version)
	}
}

func TestSQLiteStore_InitSchema(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"import_cache", "runs"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
			continue
		}
		rows.Close()
	}

	// Migrations are idempotent.
	if err := store.InitSchema(); err != nil {
		t.Errorf("second InitSchema failed: %v", err)
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	if _, _, err := store.GetImports("a.js", "h"); err != errNotOpened {
		t.Errorf("GetImports: expected errNotOpened, got %v", err)
	}
	if err := store.PutImports("a.js", "h", nil); err != errNotOpened {
		t.Errorf("PutImports: expected errNotOpened, got %v", err)
	}
	if _, err := store.PruneImports(nil); err != errNotOpened {
		t.Errorf("PruneImports: expected errNotOpened, got %v", err)
	}
	if _, err := store.CreateRun("."); err != errNotOpened {
		t.Errorf("CreateRun: expected errNotOpened, got %v", err)
	}
	if _, err := store.ListRuns(0); err != errNotOpened {
		t.Errorf("ListRuns: expected errNotOpened, got %v", err)
	}
	if err := store.InitSchema(); err != errNotOpened {
		t.Errorf("InitSchema: expected errNotOpened, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close on unopened store should succeed, got %v", err)
	}
}

// --- Import cache tests ---

func TestSQLiteStore_ImportCache(t *testing.T) {
	records := []core.Import{
		{
			Specifier: "./b",
			Kind:      core.ImportStatic,
			Pos:       core.Position{File: "src/a.js", Line: 1, Column: 15, Offset: 14},
		},
		{
			Specifier: "react",
			Kind:      core.ImportRequire,
			Pos:       core.Position{File: "src/a.js", Line: 2, Column: 19, Offset: 40},
		},
	}

	tests := []struct {
		name      string
		setup     func(t *testing.T, store *SQLiteStore)
		hash      string
		wantFound bool
		wantLen   int
	}{
		{
			name:      "miss on empty cache",
			hash:      "h1",
			wantFound: false,
		},
		{
			name: "hit with matching hash",
			setup: func(t *testing.T, store *SQLiteStore) {
				if err := store.PutImports("src/a.js", "h1", records); err != nil {
					t.Fatalf("PutImports failed: %v", err)
				}
			},
			hash:      "h1",
			wantFound: true,
			wantLen:   2,
		},
		{
			name: "miss with different hash",
			setup: func(t *testing.T, store *SQLiteStore) {
				if err := store.PutImports("src/a.js", "h1", records); err != nil {
					t.Fatalf("PutImports failed: %v", err)
				}
			},
			hash:      "h2",
			wantFound: false,
		},
		{
			name: "replaced entry",
			setup: func(t *testing.T, store *SQLiteStore) {
				if err := store.PutImports("src/a.js", "h1", records); err != nil {
					t.Fatalf("PutImports failed: %v", err)
				}
				if err := store.PutImports("src/a.js", "h2", records[:1]); err != nil {
					t.Fatalf("PutImports failed: %v", err)
				}
			},
			hash:      "h2",
			wantFound: true,
			wantLen:   1,
		},
		{
			name: "file without imports",
			setup: func(t *testing.T, store *SQLiteStore) {
				if err := store.PutImports("src/a.js", "h1", nil); err != nil {
					t.Fatalf("PutImports failed: %v", err)
				}
			},
			hash:      "h1",
			wantFound: true,
			wantLen:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			if tt.setup != nil {
				tt.setup(t, store)
			}

			got, found, err := store.GetImports("src/a.js", tt.hash)
			if err != nil {
				t.Fatalf("GetImports failed: %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("expected found=%v, got %v", tt.wantFound, found)
			}
			if len(got) != tt.wantLen {
				t.Errorf("expected %d imports, got %d", tt.wantLen, len(got))
			}
		})
	}
}

func TestSQLiteStore_ImportCacheRoundTripFields(t *testing.T) {
	store := setupTestStore(t)
	want := core.Import{
		Specifier: "./b",
		Kind:      core.ImportDynamic,
		Pos:       core.Position{File: "a.ts", Line: 3, Column: 8, Offset: 51},
	}
	if err := store.PutImports("a.ts", "h", []core.Import{want}); err != nil {
		t.Fatalf("PutImports failed: %v", err)
	}

	got, found, err := store.GetImports("a.ts", "h")
	if err != nil || !found {
		t.Fatalf("expected cached imports, found=%v err=%v", found, err)
	}
	if got[0] != want {
		t.Errorf("expected %+v, got %+v", want, got[0])
	}
}

func TestSQLiteStore_PruneImports(t *testing.T) {
	store := setupTestStore(t)
	for _, p := range []string{"a.js", "b.js", "c.js"} {
		if err := store.PutImports(p, "h", nil); err != nil {
			t.Fatalf("PutImports failed: %v", err)
		}
	}

	removed, err := store.PruneImports([]string{"a.js", "c.js"})
	if err != nil {
		t.Fatalf("PruneImports failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed entry, got %d", removed)
	}
	if _, found, _ := store.GetImports("b.js", "h"); found {
		t.Error("b.js should have been pruned")
	}
	if _, found, _ := store.GetImports("a.js", "h"); !found {
		t.Error("a.js should have been kept")
	}

	removed, err = store.PruneImports([]string{"a.js", "c.js"})
	if err != nil {
		t.Fatalf("PruneImports failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected nothing to prune, got %d", removed)
	}
}

// --- Run lifecycle tests ---

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	tests := []struct {
		name      string
		operation func(t *testing.T, store *SQLiteStore, run *core.Run)
		verify    func(t *testing.T, run *core.Run)
	}{
		{
			name: "create run",
			verify: func(t *testing.T, run *core.Run) {
				if run.ID == "" {
					t.Error("run ID should not be empty")
				}
				if run.Root != "/project" {
					t.Errorf("expected root '/project', got %q", run.Root)
				}
				if run.Status != core.RunStatusRunning {
					t.Errorf("expected status running, got %s", run.Status)
				}
				if run.CompletedAt != nil {
					t.Error("running run should not have a completion time")
				}
			},
		},
		{
			name: "complete run",
			operation: func(t *testing.T, store *SQLiteStore, run *core.Run) {
				stats := core.RunStats{Files: 12, Cycles: 2, Errors: 4, Warnings: 1}
				if err := store.CompleteRun(run.ID, core.RunStatusCompleted, stats, ""); err != nil {
					t.Fatalf("failed to complete run: %v", err)
				}
			},
			verify: func(t *testing.T, run *core.Run) {
				if run.Status != core.RunStatusCompleted {
					t.Errorf("expected status completed, got %s", run.Status)
				}
				if run.CompletedAt == nil {
					t.Fatal("completed run should have a completion time")
				}
				if run.Stats.Files != 12 || run.Stats.Cycles != 2 || run.Stats.Errors != 4 || run.Stats.Warnings != 1 {
					t.Errorf("unexpected stats: %+v", run.Stats)
				}
				if run.Duration() < 0 {
					t.Errorf("duration should not be negative, got %v", run.Duration())
				}
			},
		},
		{
			name: "fail run",
			operation: func(t *testing.T, store *SQLiteStore, run *core.Run) {
				if err := store.CompleteRun(run.ID, core.RunStatusFailed, core.RunStats{}, "config error"); err != nil {
					t.Fatalf("failed to complete run: %v", err)
				}
			},
			verify: func(t *testing.T, run *core.Run) {
				if run.Status != core.RunStatusFailed {
					t.Errorf("expected status failed, got %s", run.Status)
				}
				if run.Error != "config error" {
					t.Errorf("expected error 'config error', got %q", run.Error)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			run, err := store.CreateRun("/project")
			if err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
			if tt.operation != nil {
				tt.operation(t, store, run)
			}

			got, err := store.GetRun(run.ID)
			if err != nil {
				t.Fatalf("failed to get run: %v", err)
			}
			tt.verify(t, got)
		})
	}
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.GetRun("missing"); err == nil {
		t.Error("expected error for missing run")
	}
	if err := store.CompleteRun("missing", core.RunStatusCompleted, core.RunStats{}, ""); err == nil {
		t.Error("expected error completing a missing run")
	}
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := store.CreateRun("/project")
		if err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		ids = append(ids, run.ID)
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Errorf("expected newest first, got %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	limited, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(limited))
	}
}

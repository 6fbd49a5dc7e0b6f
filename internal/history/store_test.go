package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"merakireboot/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	run, err := store.BeginRun(ctx, history.Run{Organization: "Acme", NetworkID: "N_1", IntervalSeconds: 30, StartedAt: started})
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if run.ID == "" || run.Outcome != history.OutcomeRunning {
		t.Fatalf("unexpected run %+v", run)
	}

	if err := store.SetTarget(ctx, run.ID, "1", "n1.meraki.com", 2, false); err != nil {
		t.Fatalf("SetTarget returned error: %v", err)
	}
	for i, serial := range []string{"Q2AB-1111", "Q2AB-2222"} {
		status := 200
		if i == 1 {
			status = 404
		}
		if err := store.RecordResult(ctx, history.Result{RunID: run.ID, Position: i, Serial: serial, Model: "MR33", StatusCode: status, RequestedAt: started.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("RecordResult returned error: %v", err)
		}
	}
	finished := started.Add(time.Minute)
	if err := store.FinishRun(ctx, run.ID, history.OutcomeCompleted, 1, 1, "", finished); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun returned error: %v", err)
	}
	want := history.Run{
		ID:              run.ID,
		Organization:    "Acme",
		OrganizationID:  "1",
		Shard:           "n1.meraki.com",
		NetworkID:       "N_1",
		IntervalSeconds: 30,
		DeviceCount:     2,
		Succeeded:       1,
		Failed:          1,
		Outcome:         history.OutcomeCompleted,
		StartedAt:       started,
		FinishedAt:      &finished,
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("unexpected run (-want +got):\n%s", diff)
	}
	if got.Duration() != time.Minute {
		t.Fatalf("unexpected duration %v", got.Duration())
	}

	results, err := store.ListResults(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListResults returned error: %v", err)
	}
	if len(results) != 2 || results[0].Serial != "Q2AB-1111" || results[1].StatusCode != 404 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, network := range []string{"N_1", "N_2", "N_3"} {
		// Sub-second offsets exercise fixed-width timestamp ordering.
		started := base.Add(time.Duration(i) * 150 * time.Millisecond)
		if _, err := store.BeginRun(ctx, history.Run{Organization: "Acme", NetworkID: network, StartedAt: started}); err != nil {
			t.Fatalf("BeginRun returned error: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 || runs[0].NetworkID != "N_3" || runs[1].NetworkID != "N_2" {
		t.Fatalf("unexpected order %+v", runs)
	}
	if runs[0].FinishedAt != nil || runs[0].Duration() != 0 {
		t.Fatalf("expected open run, got %+v", runs[0])
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all runs, got %d", len(all))
	}
}

func TestGetRunByPrefix(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"abc-111", "abc-222", "def-333"} {
		if _, err := store.BeginRun(ctx, history.Run{ID: id, Organization: "Acme", NetworkID: "N_1"}); err != nil {
			t.Fatalf("BeginRun returned error: %v", err)
		}
	}

	run, err := store.GetRun(ctx, "def")
	if err != nil || run.ID != "def-333" {
		t.Fatalf("expected unique prefix match, got %+v %v", run, err)
	}
	if _, err := store.GetRun(ctx, "abc"); !errors.Is(err, history.ErrAmbiguousRun) {
		t.Fatalf("expected ambiguous prefix error, got %v", err)
	}
	if _, err := store.GetRun(ctx, "zzz"); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.GetRun(ctx, " "); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected not found for blank id, got %v", err)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openStore(t)
	err := store.FinishRun(context.Background(), "missing", history.OutcomeAborted, 0, 0, "boom", time.Time{})
	if !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := history.Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

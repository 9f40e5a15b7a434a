package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "listings.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(externalID, title string) *Record {
	return &Record{
		ExternalID:  externalID,
		Title:       title,
		RawPayload:  []byte(`{}`),
		SyncVersion: "2023-11-14T22:13:20Z",
		SyncedAt:    time.Unix(1_700_000_000, 0).UTC(),
	}
}

func mustCommit(t *testing.T, ctx context.Context, tx Tx) {
	t.Helper()
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := openTestSQLite(t)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	id, err := tx.Upsert(ctx, testRecord("1", "Engineer"))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id == 0 {
		t.Fatal("Upsert() returned zero id for an insert")
	}
	mustCommit(t, ctx, tx)

	tx, err = s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	existing, err := tx.LookupByExternalIDs(ctx, []string{"1", "missing"})
	if err != nil {
		t.Fatalf("LookupByExternalIDs() error = %v", err)
	}
	if got, ok := existing["1"]; !ok || got != id {
		t.Errorf("LookupByExternalIDs()[1] = %v (present=%v), want %v", got, ok, id)
	}
	if _, ok := existing["missing"]; ok {
		t.Error("LookupByExternalIDs() returned an id for an absent listing")
	}

	updated := testRecord("1", "Staff Engineer")
	updated.ID = id
	if _, err := tx.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	mustCommit(t, ctx, tx)

	tx, err = s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	active, err := tx.ActiveListings(ctx)
	if err != nil {
		t.Fatalf("ActiveListings() error = %v", err)
	}
	if len(active) != 1 || active[0].RecordID != id || active[0].ExternalID != "1" {
		t.Fatalf("ActiveListings() = %+v, want one row for listing 1", active)
	}
	if err := tx.HardDelete(ctx, id); err != nil {
		t.Fatalf("HardDelete() error = %v", err)
	}
	mustCommit(t, ctx, tx)

	tx, err = s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	existing, err = tx.LookupByExternalIDs(ctx, []string{"1"})
	if err != nil {
		t.Fatalf("LookupByExternalIDs() error = %v", err)
	}
	if len(existing) != 0 {
		t.Errorf("listing 1 still present after HardDelete: %v", existing)
	}
}

// A constraint violation on one record must abort only that record's
// savepoint: later upserts and the surrounding commit still go through.
func TestSQLiteFailedUpsertDoesNotPoisonTransaction(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := openTestSQLite(t)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := tx.Upsert(ctx, testRecord("1", "Engineer")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	mustCommit(t, ctx, tx)

	tx, err = s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	// Fresh insert with a taken external id trips the unique index.
	if _, err := tx.Upsert(ctx, testRecord("1", "Duplicate")); err == nil {
		t.Fatal("Upsert() with a duplicate external id succeeded, want unique violation")
	}

	id2, err := tx.Upsert(ctx, testRecord("2", "Designer"))
	if err != nil {
		t.Fatalf("Upsert() after failed item error = %v", err)
	}
	mustCommit(t, ctx, tx)

	tx, err = s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	existing, err := tx.LookupByExternalIDs(ctx, []string{"1", "2"})
	if err != nil {
		t.Fatalf("LookupByExternalIDs() error = %v", err)
	}
	if len(existing) != 2 {
		t.Errorf("LookupByExternalIDs() = %v, want both listings persisted", existing)
	}
	if existing["2"] != id2 {
		t.Errorf("listing 2 id = %v, want %v", existing["2"], id2)
	}
}

func TestSQLiteRollbackDiscardsWrites(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := openTestSQLite(t)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := tx.Upsert(ctx, testRecord("1", "Engineer")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	tx, err = s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	active, err := tx.ActiveListings(ctx)
	if err != nil {
		t.Fatalf("ActiveListings() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ActiveListings() after rollback = %+v, want empty", active)
	}
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

var _ Store = (*SQLite)(nil)

// SQLite backs local development and the CLI with the same Store
// contract as Postgres.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS job_listings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	external_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	job_type TEXT NOT NULL DEFAULT '',
	employment_type TEXT NOT NULL DEFAULT '',
	salary_range TEXT NOT NULL DEFAULT '',
	apply_url TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	posted_date TEXT NOT NULL DEFAULT '',
	expiry_date TEXT NOT NULL DEFAULT '',
	raw_payload BLOB,
	sync_version TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	synced_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS job_listings_external_id_active
	ON job_listings (external_id) WHERE status = 'active';
`

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

type sqliteTx struct {
	tx        *sql.Tx
	savepoint int
}

func (t *sqliteTx) LookupByExternalIDs(ctx context.Context, externalIDs []string) (map[string]RecordID, error) {
	existing := make(map[string]RecordID, len(externalIDs))
	if len(externalIDs) == 0 {
		return existing, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(externalIDs)), ",")
	args := make([]any, len(externalIDs))
	for i, id := range externalIDs {
		args[i] = id
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, external_id FROM job_listings
		WHERE external_id IN (`+placeholders+`) AND status = 'active'
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var externalID string
		if err := rows.Scan(&id, &externalID); err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		existing[externalID] = RecordID(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing rows: %w", err)
	}
	return existing, nil
}

func (t *sqliteTx) Upsert(ctx context.Context, rec *Record) (RecordID, error) {
	t.savepoint++
	name := fmt.Sprintf("upsert_%d", t.savepoint)
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return 0, fmt.Errorf("failed to open savepoint: %w", err)
	}

	id, err := t.upsertRecord(ctx, rec)
	if err != nil {
		_, _ = t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
		_, _ = t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
		return 0, err
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return 0, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return id, nil
}

func (t *sqliteTx) upsertRecord(ctx context.Context, rec *Record) (RecordID, error) {
	if rec.ID == 0 {
		res, err := t.tx.ExecContext(ctx, `
			INSERT INTO job_listings (
				external_id, title, description, summary, department, location,
				job_type, employment_type, salary_range, apply_url, source_url,
				posted_date, expiry_date, raw_payload, sync_version, synced_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ExternalID, rec.Title, rec.Description, rec.Summary, rec.Department,
			rec.Location, rec.JobType, rec.EmploymentType, rec.SalaryRange,
			rec.ApplyURL, rec.SourceURL, rec.PostedDate, rec.ExpiryDate,
			rec.RawPayload, rec.SyncVersion, rec.SyncedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert listing %q: %w", rec.ExternalID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read inserted id: %w", err)
		}
		return RecordID(id), nil
	}

	res, err := t.tx.ExecContext(ctx, `
		UPDATE job_listings SET
			external_id = ?, title = ?, description = ?, summary = ?,
			department = ?, location = ?, job_type = ?, employment_type = ?,
			salary_range = ?, apply_url = ?, source_url = ?,
			posted_date = ?, expiry_date = ?, raw_payload = ?,
			sync_version = ?, synced_at = ?
		WHERE id = ?
	`,
		rec.ExternalID, rec.Title, rec.Description, rec.Summary, rec.Department,
		rec.Location, rec.JobType, rec.EmploymentType, rec.SalaryRange,
		rec.ApplyURL, rec.SourceURL, rec.PostedDate, rec.ExpiryDate,
		rec.RawPayload, rec.SyncVersion, rec.SyncedAt, int64(rec.ID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update listing %q: %w", rec.ExternalID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("failed to update listing %q: %w", rec.ExternalID, ErrNotFound)
	}
	return rec.ID, nil
}

func (t *sqliteTx) ActiveListings(ctx context.Context) ([]ActiveListing, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, external_id FROM job_listings
		WHERE status = 'active' ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active listings: %w", err)
	}
	defer rows.Close()

	var active []ActiveListing
	for rows.Next() {
		var a ActiveListing
		var id int64
		if err := rows.Scan(&id, &a.ExternalID); err != nil {
			return nil, fmt.Errorf("failed to scan active listing: %w", err)
		}
		a.RecordID = RecordID(id)
		active = append(active, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active listings: %w", err)
	}
	return active, nil
}

func (t *sqliteTx) HardDelete(ctx context.Context, id RecordID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM job_listings WHERE id = ?`, int64(id)); err != nil {
		return fmt.Errorf("failed to delete listing %d: %w", id, err)
	}
	return nil
}

func (t *sqliteTx) Commit(_ context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *sqliteTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}

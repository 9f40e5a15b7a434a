package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = (*Postgres)(nil)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LookupByExternalIDs(ctx context.Context, externalIDs []string) (map[string]RecordID, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, external_id
		FROM job_listings
		WHERE external_id = ANY($1) AND status = 'active'
	`, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up listings: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]RecordID, len(externalIDs))
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

// Upsert runs inside a savepoint so a failed statement aborts only this
// item, not the surrounding batch transaction.
func (t *pgTx) Upsert(ctx context.Context, rec *Record) (RecordID, error) {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to open savepoint: %w", err)
	}

	id, err := upsertRecord(ctx, sp, rec)
	if err != nil {
		_ = sp.Rollback(ctx)
		return 0, err
	}

	if err := sp.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return id, nil
}

func upsertRecord(ctx context.Context, tx pgx.Tx, rec *Record) (RecordID, error) {
	if rec.ID == 0 {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO job_listings (
				external_id, title, description, summary, department, location,
				job_type, employment_type, salary_range, apply_url, source_url,
				posted_date, expiry_date, raw_payload, sync_version, synced_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING id
		`,
			rec.ExternalID, rec.Title, rec.Description, rec.Summary, rec.Department,
			rec.Location, rec.JobType, rec.EmploymentType, rec.SalaryRange,
			rec.ApplyURL, rec.SourceURL, rec.PostedDate, rec.ExpiryDate,
			rec.RawPayload, rec.SyncVersion, rec.SyncedAt,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert listing %q: %w", rec.ExternalID, err)
		}
		return RecordID(id), nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE job_listings SET
			external_id = $1, title = $2, description = $3, summary = $4,
			department = $5, location = $6, job_type = $7, employment_type = $8,
			salary_range = $9, apply_url = $10, source_url = $11,
			posted_date = $12, expiry_date = $13, raw_payload = $14,
			sync_version = $15, synced_at = $16
		WHERE id = $17
	`,
		rec.ExternalID, rec.Title, rec.Description, rec.Summary, rec.Department,
		rec.Location, rec.JobType, rec.EmploymentType, rec.SalaryRange,
		rec.ApplyURL, rec.SourceURL, rec.PostedDate, rec.ExpiryDate,
		rec.RawPayload, rec.SyncVersion, rec.SyncedAt, int64(rec.ID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update listing %q: %w", rec.ExternalID, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("failed to update listing %q: %w", rec.ExternalID, ErrNotFound)
	}
	return rec.ID, nil
}

func (t *pgTx) ActiveListings(ctx context.Context) ([]ActiveListing, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, external_id
		FROM job_listings
		WHERE status = 'active'
		ORDER BY id
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

func (t *pgTx) HardDelete(ctx context.Context, id RecordID) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM job_listings WHERE id = $1`, int64(id)); err != nil {
		return fmt.Errorf("failed to delete listing %d: %w", id, err)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// Package store persists job listings keyed by their upstream external ID.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("listing not found")

// RecordID is the stable internal identifier of a stored listing.
type RecordID int64

// Record is a stored listing row. A zero ID means the record has not
// been persisted yet.
type Record struct {
	ID             RecordID
	ExternalID     string
	Title          string
	Description    string
	Summary        string
	Department     string
	Location       string
	JobType        string
	EmploymentType string
	SalaryRange    string
	ApplyURL       string
	SourceURL      string
	PostedDate     string
	ExpiryDate     string
	RawPayload     []byte
	SyncVersion    string
	SyncedAt       time.Time
}

// ActiveListing is the (internal ID, external ID) pair used by the
// stale-deletion phase.
type ActiveListing struct {
	RecordID   RecordID
	ExternalID string
}

// Store hands out transaction-scoped views. Each reconciliation phase
// acquires its own Tx and must finish it with Commit or Rollback.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a transaction-scoped view of the listing store.
//
// Upsert failures for one record must not poison the transaction:
// implementations isolate each Upsert in a savepoint so the caller can
// record the error and continue with the next item.
type Tx interface {
	// LookupByExternalIDs bulk-maps external IDs to record IDs for every
	// non-deleted listing present in the store. IDs absent from the store
	// are simply absent from the result.
	LookupByExternalIDs(ctx context.Context, externalIDs []string) (map[string]RecordID, error)

	// Upsert inserts rec when rec.ID is zero and fully overwrites the
	// existing row otherwise. Returns the record ID.
	Upsert(ctx context.Context, rec *Record) (RecordID, error)

	// ActiveListings returns the (record ID, external ID) pair of every
	// non-deleted listing.
	ActiveListings(ctx context.Context) ([]ActiveListing, error)

	// HardDelete permanently destroys a listing row.
	HardDelete(ctx context.Context, id RecordID) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

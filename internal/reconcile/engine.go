// Package reconcile makes the persisted listing store match an incoming
// snapshot exactly: create new listings, overwrite changed ones, destroy
// the ones the snapshot no longer carries.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/drivehr/jobsync/internal/listing"
	"github.com/drivehr/jobsync/internal/store"
	"github.com/drivehr/jobsync/internal/xslog"
	go_json "github.com/goccy/go-json"
)

// Hooks are optional observers invoked synchronously around store
// mutations. Nil callbacks are skipped.
type Hooks struct {
	OnBeforeUpsert func(ctx context.Context, l listing.Incoming)
	OnBeforeDelete func(ctx context.Context, a store.ActiveListing)
	OnAfterDelete  func(ctx context.Context, a store.ActiveListing)
}

type Engine struct {
	store  store.Store
	source string
	hooks  Hooks
	now    func() time.Time
}

type Option func(*Engine)

func WithHooks(hooks Hooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(st store.Store, source string, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile applies one snapshot batch in two independently transactional
// phases: creates/updates commit together first, then stale listings are
// hard-deleted in a second transaction. A deletion failure rolls back
// only the deletion phase; committed creates/updates stay.
//
// A returned error is batch-level (store unavailable, commit failure).
// Individual bad items never produce an error return; they are recorded
// in the result and the batch continues.
func (e *Engine) Reconcile(ctx context.Context, rawJobs []go_json.RawMessage) (*Result, error) {
	now := e.now()
	res := newResult(len(rawJobs), e.source, now)
	syncVersion := now.UTC().Format(time.RFC3339)

	incoming, valid := e.decodeBatch(rawJobs, res)

	if err := e.applyUpserts(ctx, incoming, valid, syncVersion, now, res); err != nil {
		return nil, err
	}

	if err := e.removeStale(ctx, valid, res); err != nil {
		return res, err
	}

	return res, nil
}

type item struct {
	index   int
	listing listing.Incoming
}

// decodeBatch validates items in input order. valid holds the set of
// external IDs that survive validation; it is also the keep-set for the
// deletion phase.
func (e *Engine) decodeBatch(rawJobs []go_json.RawMessage, res *Result) ([]item, map[string]struct{}) {
	items := make([]item, 0, len(rawJobs))
	valid := make(map[string]struct{}, len(rawJobs))

	for i, raw := range rawJobs {
		var inc listing.Incoming
		if err := go_json.Unmarshal(raw, &inc); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("job at index %d is not an object", i))
			continue
		}

		clean := inc.Sanitized()
		if clean.ID == "" || clean.Title == "" {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("job at index %d is missing id or title", i))
			continue
		}

		items = append(items, item{index: i, listing: clean})
		valid[clean.ID] = struct{}{}
	}

	return items, valid
}

func (e *Engine) applyUpserts(ctx context.Context, items []item, valid map[string]struct{}, syncVersion string, now time.Time, res *Result) error {
	logger := xslog.FromContext(ctx)

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}

	ids := make([]string, 0, len(valid))
	for id := range valid {
		ids = append(ids, id)
	}

	existing, err := tx.LookupByExternalIDs(ctx, ids)
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to look up existing listings: %w", err)
	}

	for _, it := range items {
		l := it.listing

		if e.hooks.OnBeforeUpsert != nil {
			e.hooks.OnBeforeUpsert(ctx, l)
		}

		rec := &store.Record{
			ExternalID:     l.ID,
			Title:          l.Title,
			Description:    l.Description,
			Summary:        l.Summary,
			Department:     l.Department,
			Location:       l.Location,
			JobType:        l.JobType,
			EmploymentType: l.EmploymentType,
			SalaryRange:    l.SalaryRange,
			ApplyURL:       l.ApplyURL,
			SourceURL:      l.SourceURL,
			PostedDate:     l.PostedDate,
			ExpiryDate:     l.ExpiryDate,
			RawPayload:     l.AuditJSON(),
			SyncVersion:    syncVersion,
			SyncedAt:       now,
		}

		recordID, existed := existing[l.ID]
		if existed {
			rec.ID = recordID
		}

		newID, err := tx.Upsert(ctx, rec)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("failed to store job %q: %v", l.ID, err))
			logger.WarnContext(ctx, "listing upsert failed", xslog.JobID(l.ID), xslog.Error(err))
			continue
		}

		if existed {
			res.Updated++
		} else {
			res.Processed++
		}

		// A duplicate external ID later in the batch takes the update
		// path against this record: last write wins.
		existing[l.ID] = newID
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upsert transaction: %w", err)
	}

	logger.DebugContext(ctx, "upsert phase committed",
		xslog.Created(res.Processed),
		xslog.Updated(res.Updated),
		xslog.Skipped(res.Skipped),
	)
	return nil
}

// removeStale destroys every stored listing whose external ID is absent
// from the incoming snapshot. Runs in its own transaction after the
// upsert phase commits.
func (e *Engine) removeStale(ctx context.Context, keep map[string]struct{}, res *Result) error {
	logger := xslog.FromContext(ctx)

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin deletion transaction: %w", err)
	}

	active, err := tx.ActiveListings(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to fetch active listings: %w", err)
	}

	var removed []store.ActiveListing
	for _, a := range active {
		if _, ok := keep[a.ExternalID]; ok {
			continue
		}

		if e.hooks.OnBeforeDelete != nil {
			e.hooks.OnBeforeDelete(ctx, a)
		}

		if err := tx.HardDelete(ctx, a.RecordID); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to delete stale listing %q: %w", a.ExternalID, err)
		}

		if e.hooks.OnAfterDelete != nil {
			e.hooks.OnAfterDelete(ctx, a)
		}

		removed = append(removed, a)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deletion transaction: %w", err)
	}

	for _, a := range removed {
		res.Removed++
		res.RemovedJobIDs = append(res.RemovedJobIDs, a.ExternalID)
	}

	if res.Removed > 0 {
		logger.InfoContext(ctx, "removed stale listings", xslog.Removed(res.Removed))
	}
	return nil
}

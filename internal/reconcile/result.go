package reconcile

import "time"

// Result summarizes one reconciliation batch. Processed counts newly
// created listings; updated counts overwrites of existing ones. Skipped
// items and per-item persistence failures land in Errors without
// aborting the batch.
type Result struct {
	Success       bool     `json:"success"`
	Processed     int      `json:"processed"`
	Updated       int      `json:"updated"`
	Skipped       int      `json:"skipped"`
	Total         int      `json:"total"`
	Errors        []string `json:"errors"`
	Removed       int      `json:"removed"`
	RemovedJobIDs []string `json:"removed_job_ids"`
	Timestamp     string   `json:"timestamp"`
	Source        string   `json:"source"`
}

func newResult(total int, source string, now time.Time) *Result {
	return &Result{
		Success:       true,
		Total:         total,
		Errors:        []string{},
		RemovedJobIDs: []string{},
		Timestamp:     now.UTC().Format(time.RFC3339),
		Source:        source,
	}
}

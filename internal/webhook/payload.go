package webhook

import "fmt"

// ExpectedShape is echoed in diagnostic 400 bodies.
const ExpectedShape = `{"jobs": [{"id": "...", "title": "..."}]}`

// PayloadValidator performs structural checks on a decoded request body
// before any item is processed. Per-item validation happens later inside
// reconciliation; a bad individual item does not invalidate the batch.
type PayloadValidator struct {
	maxJobs int
}

func NewPayloadValidator(maxJobs int) *PayloadValidator {
	return &PayloadValidator{maxJobs: maxJobs}
}

type ValidationResult struct {
	OK     bool
	Reason string
}

func valid() ValidationResult { return ValidationResult{OK: true} }

func invalid(format string, args ...any) ValidationResult {
	return ValidationResult{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks that the decoded body is an object carrying a jobs
// array of bounded size whose first element looks like a listing. The
// size bound is a resource-exhaustion guard.
func (v *PayloadValidator) Validate(decoded any) ValidationResult {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return invalid("payload must be a JSON object")
	}

	jobsValue, ok := obj["jobs"]
	if !ok {
		return invalid("payload is missing the jobs field")
	}

	jobs, ok := jobsValue.([]any)
	if !ok {
		return invalid("jobs must be an array")
	}

	if len(jobs) > v.maxJobs {
		return invalid("too many jobs: %d exceeds the maximum of %d", len(jobs), v.maxJobs)
	}

	if len(jobs) > 0 {
		first, ok := jobs[0].(map[string]any)
		if !ok {
			return invalid("jobs[0] must be an object")
		}
		if !hasAnyKey(first, "id", "jobId", "job_id") {
			return invalid("jobs[0] is missing the id field")
		}
		if !hasAnyKey(first, "title") {
			return invalid("jobs[0] is missing the title field")
		}
	}

	return valid()
}

func hasAnyKey(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

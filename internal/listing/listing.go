// Package listing holds the job listing types exchanged between the
// webhook payload and the persisted store.
package listing

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/drivehr/jobsync/internal/sanitize"
	"github.com/go-playground/validator/v10"
	go_json "github.com/goccy/go-json"
)

var ErrNotObject = errors.New("listing is not a JSON object")

// Incoming is a single job listing as delivered by the upstream source.
// Only ID and Title are required; everything else is best effort.
type Incoming struct {
	ID             string
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
}

// Field aliases in lookup order. The upstream scraper has emitted both
// camelCase and snake_case over its lifetime; the first key present wins,
// camelCase checked first.
var fieldAliases = map[string][]string{
	"id":             {"id", "jobId", "job_id"},
	"title":          {"title"},
	"description":    {"description"},
	"summary":        {"summary"},
	"department":     {"department"},
	"location":       {"location"},
	"jobType":        {"type", "jobType", "job_type"},
	"employmentType": {"employmentType", "employment_type"},
	"salaryRange":    {"salaryRange", "salary_range"},
	"applyUrl":       {"applyUrl", "apply_url"},
	"sourceUrl":      {"sourceUrl", "source_url"},
	"postedDate":     {"postedDate", "posted_date"},
	"expiryDate":     {"expiryDate", "expiry_date"},
}

func (l *Incoming) UnmarshalJSON(data []byte) error {
	var fields map[string]go_json.RawMessage
	if err := go_json.Unmarshal(data, &fields); err != nil {
		return ErrNotObject
	}

	l.ID = lookupString(fields, fieldAliases["id"])
	l.Title = lookupString(fields, fieldAliases["title"])
	l.Description = lookupString(fields, fieldAliases["description"])
	l.Summary = lookupString(fields, fieldAliases["summary"])
	l.Department = lookupString(fields, fieldAliases["department"])
	l.Location = lookupString(fields, fieldAliases["location"])
	l.JobType = lookupString(fields, fieldAliases["jobType"])
	l.EmploymentType = lookupString(fields, fieldAliases["employmentType"])
	l.SalaryRange = lookupString(fields, fieldAliases["salaryRange"])
	l.ApplyURL = lookupString(fields, fieldAliases["applyUrl"])
	l.SourceURL = lookupString(fields, fieldAliases["sourceUrl"])
	l.PostedDate = lookupString(fields, fieldAliases["postedDate"])
	l.ExpiryDate = lookupString(fields, fieldAliases["expiryDate"])

	return nil
}

// lookupString returns the first alias present in the object, coercing
// JSON numbers to their literal representation (numeric job IDs happen).
func lookupString(fields map[string]go_json.RawMessage, aliases []string) string {
	for _, key := range aliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		var s string
		if err := go_json.Unmarshal(raw, &s); err == nil {
			return s
		}

		var n go_json.Number
		if err := go_json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}

		return ""
	}
	return ""
}

var validate = validator.New()

// Sanitized returns a copy safe to persist: markup stripped from plain
// text fields, the description reduced to an allowlisted subset, dates
// normalized, malformed URLs dropped.
func (l Incoming) Sanitized() Incoming {
	out := Incoming{
		ID:             sanitize.Text(l.ID),
		Title:          sanitize.Text(l.Title),
		Description:    sanitize.RichText(l.Description),
		Summary:        sanitize.Text(l.Summary),
		Department:     sanitize.Text(l.Department),
		Location:       sanitize.Text(l.Location),
		JobType:        sanitize.Text(l.JobType),
		EmploymentType: sanitize.Text(l.EmploymentType),
		SalaryRange:    sanitize.Text(l.SalaryRange),
		ApplyURL:       sanitize.Text(l.ApplyURL),
		SourceURL:      sanitize.Text(l.SourceURL),
		PostedDate:     NormalizeDate(l.PostedDate),
		ExpiryDate:     NormalizeDate(l.ExpiryDate),
	}

	if out.ApplyURL != "" && validate.Var(out.ApplyURL, "url") != nil {
		out.ApplyURL = ""
	}
	if out.SourceURL != "" && validate.Var(out.SourceURL, "url") != nil {
		out.SourceURL = ""
	}

	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// NormalizeDate leniently parses an upstream date string into ISO
// YYYY-MM-DD form. Unparseable input normalizes to empty rather than
// failing the listing.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return time.Unix(n, 0).UTC().Format("2006-01-02")
	}
	return ""
}

// auditPayload mirrors the incoming fields persisted for debugging. The
// long description is deliberately excluded.
type auditPayload struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Summary        string `json:"summary,omitempty"`
	Department     string `json:"department,omitempty"`
	Location       string `json:"location,omitempty"`
	JobType        string `json:"job_type,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
	SalaryRange    string `json:"salary_range,omitempty"`
	ApplyURL       string `json:"apply_url,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
	PostedDate     string `json:"posted_date,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
}

// AuditJSON serializes the listing minus the description for the
// raw-payload audit column.
func (l Incoming) AuditJSON() []byte {
	data, err := go_json.Marshal(auditPayload{
		ID:             l.ID,
		Title:          l.Title,
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
	})
	if err != nil {
		return []byte("{}")
	}
	return data
}

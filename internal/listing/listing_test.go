package listing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	go_json "github.com/goccy/go-json"
)

func TestUnmarshalAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want Incoming
	}{
		{
			name: "camelCase fields",
			body: `{"id":"42","title":"Engineer","employmentType":"Full-time","salaryRange":"100-120k","applyUrl":"https://x.test/a","postedDate":"2026-08-01"}`,
			want: Incoming{
				ID:             "42",
				Title:          "Engineer",
				EmploymentType: "Full-time",
				SalaryRange:    "100-120k",
				ApplyURL:       "https://x.test/a",
				PostedDate:     "2026-08-01",
			},
		},
		{
			name: "snake_case fields",
			body: `{"id":"42","title":"Engineer","employment_type":"Contract","salary_range":"90k","apply_url":"https://x.test/b","posted_date":"2026-08-02"}`,
			want: Incoming{
				ID:             "42",
				Title:          "Engineer",
				EmploymentType: "Contract",
				SalaryRange:    "90k",
				ApplyURL:       "https://x.test/b",
				PostedDate:     "2026-08-02",
			},
		},
		{
			name: "camelCase wins when both present",
			body: `{"id":"42","title":"Engineer","employmentType":"Full-time","employment_type":"Contract"}`,
			want: Incoming{ID: "42", Title: "Engineer", EmploymentType: "Full-time"},
		},
		{
			name: "type preferred over jobType",
			body: `{"id":"42","title":"Engineer","type":"Remote","jobType":"Onsite"}`,
			want: Incoming{ID: "42", Title: "Engineer", JobType: "Remote"},
		},
		{
			name: "numeric id coerced to string",
			body: `{"id":42,"title":"Engineer"}`,
			want: Incoming{ID: "42", Title: "Engineer"},
		},
		{
			name: "missing optional fields stay empty",
			body: `{"id":"42","title":"Engineer"}`,
			want: Incoming{ID: "42", Title: "Engineer"},
		},
		{
			name: "non-string optional value ignored",
			body: `{"id":"42","title":"Engineer","location":{"city":"Boston"}}`,
			want: Incoming{ID: "42", Title: "Engineer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got Incoming
			if err := go_json.Unmarshal([]byte(tt.body), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshalNotObject(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`"job"`, `42`, `[1]`, `null`} {
		var got Incoming
		if err := go_json.Unmarshal([]byte(body), &got); err == nil && body != `null` {
			t.Errorf("Unmarshal(%s) expected error, got nil", body)
		}
	}
}

func TestSanitized(t *testing.T) {
	t.Parallel()

	in := Incoming{
		ID:          " 42 ",
		Title:       "<b>Engineer</b>",
		Description: `<p>Great job</p><script>alert(1)</script>`,
		Department:  "R&amp;D",
		ApplyURL:    "not a url",
		SourceURL:   "https://careers.example.com/42",
		PostedDate:  "2026-08-01T09:00:00Z",
		ExpiryDate:  "gibberish",
	}

	got := in.Sanitized()

	want := Incoming{
		ID:          "42",
		Title:       "Engineer",
		Description: "<p>Great job</p>",
		Department:  "R&D",
		ApplyURL:    "",
		SourceURL:   "https://careers.example.com/42",
		PostedDate:  "2026-08-01",
		ExpiryDate:  "",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sanitized() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"2026-08-01", "2026-08-01"},
		{"2026-08-01T09:30:00Z", "2026-08-01"},
		{"2026-08-01 09:30:00", "2026-08-01"},
		{"08/15/2026", "2026-08-15"},
		{"January 2, 2026", "2026-01-02"},
		{"1756080000", "2025-08-25"},
		{"", ""},
		{"not a date", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeDate(tt.input); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAuditJSONExcludesDescription(t *testing.T) {
	t.Parallel()

	in := Incoming{ID: "42", Title: "Engineer", Description: "very long text"}

	var decoded map[string]any
	if err := go_json.Unmarshal(in.AuditJSON(), &decoded); err != nil {
		t.Fatalf("AuditJSON() produced invalid JSON: %v", err)
	}

	if _, ok := decoded["description"]; ok {
		t.Error("AuditJSON() must not carry the description")
	}
	if decoded["id"] != "42" || decoded["title"] != "Engineer" {
		t.Errorf("AuditJSON() = %v, want id and title preserved", decoded)
	}
}

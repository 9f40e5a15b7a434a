package webhook

import (
	"strings"
	"testing"

	go_json "github.com/goccy/go-json"
)

func TestPayloadValidator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		maxJobs    int
		wantOK     bool
		wantReason string
	}{
		{
			name:    "valid payload",
			body:    `{"jobs":[{"id":"1","title":"Engineer"}]}`,
			maxJobs: 100,
			wantOK:  true,
		},
		{
			name:    "empty jobs array",
			body:    `{"jobs":[]}`,
			maxJobs: 100,
			wantOK:  true,
		},
		{
			name:    "snake_case id accepted in sanity check",
			body:    `{"jobs":[{"job_id":"1","title":"Engineer"}]}`,
			maxJobs: 100,
			wantOK:  true,
		},
		{
			name:       "not an object",
			body:       `[1,2,3]`,
			maxJobs:    100,
			wantReason: "payload must be a JSON object",
		},
		{
			name:       "missing jobs key",
			body:       `{"listings":[]}`,
			maxJobs:    100,
			wantReason: "missing the jobs field",
		},
		{
			name:       "jobs not an array",
			body:       `{"jobs":{"id":"1"}}`,
			maxJobs:    100,
			wantReason: "jobs must be an array",
		},
		{
			name:       "too many jobs",
			body:       `{"jobs":[{"id":"1","title":"a"},{"id":"2","title":"b"}]}`,
			maxJobs:    1,
			wantReason: "too many jobs",
		},
		{
			name:       "first element not an object",
			body:       `{"jobs":["nope"]}`,
			maxJobs:    100,
			wantReason: "jobs[0] must be an object",
		},
		{
			name:       "first element missing id",
			body:       `{"jobs":[{"title":"Engineer"}]}`,
			maxJobs:    100,
			wantReason: "missing the id field",
		},
		{
			name:       "first element missing title",
			body:       `{"jobs":[{"id":"1"}]}`,
			maxJobs:    100,
			wantReason: "missing the title field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var decoded any
			if err := go_json.Unmarshal([]byte(tt.body), &decoded); err != nil {
				t.Fatalf("failed to decode test body: %v", err)
			}

			v := NewPayloadValidator(tt.maxJobs)
			result := v.Validate(decoded)

			if result.OK != tt.wantOK {
				t.Fatalf("Validate() OK = %v, want %v (reason: %q)", result.OK, tt.wantOK, result.Reason)
			}
			if !tt.wantOK && !strings.Contains(result.Reason, tt.wantReason) {
				t.Errorf("Validate() reason = %q, want it to contain %q", result.Reason, tt.wantReason)
			}
		})
	}
}

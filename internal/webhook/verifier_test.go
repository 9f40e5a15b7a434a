package webhook

import (
	"math"
	"strconv"
	"testing"
	"time"
)

var verifierNow = time.Unix(1_700_000_000, 0)

func newTestVerifier(secret string, maxDrift time.Duration) *Verifier {
	return NewVerifier(secret, maxDrift, WithClock(func() time.Time { return verifierNow }))
}

func TestVerify(t *testing.T) {
	t.Parallel()

	const secret = "test-secret"
	body := []byte(`{"jobs":[{"id":"1","title":"Engineer"}]}`)
	ts := strconv.FormatInt(verifierNow.Unix(), 10)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		timestamp string
		want      bool
	}{
		{
			name:      "valid signature",
			secret:    secret,
			body:      body,
			signature: Sign(secret, body),
			timestamp: ts,
			want:      true,
		},
		{
			name:      "mutated body",
			secret:    secret,
			body:      []byte(`{"jobs":[{"id":"2","title":"Engineer"}]}`),
			signature: Sign(secret, body),
			timestamp: ts,
			want:      false,
		},
		{
			name:      "mutated signature",
			secret:    secret,
			body:      body,
			signature: mutateLastByte(Sign(secret, body)),
			timestamp: ts,
			want:      false,
		},
		{
			name:      "wrong secret",
			secret:    secret,
			body:      body,
			signature: Sign("other-secret", body),
			timestamp: ts,
			want:      false,
		},
		{
			name:      "missing prefix",
			secret:    secret,
			body:      body,
			signature: Sign(secret, body)[len(SignaturePrefix):],
			timestamp: ts,
			want:      false,
		},
		{
			name:      "empty signature",
			secret:    secret,
			body:      body,
			signature: "",
			timestamp: ts,
			want:      false,
		},
		{
			name:      "empty secret fails closed",
			secret:    "",
			body:      body,
			signature: Sign("", body),
			timestamp: ts,
			want:      false,
		},
		{
			name:      "missing timestamp",
			secret:    secret,
			body:      body,
			signature: Sign(secret, body),
			timestamp: "",
			want:      false,
		},
		{
			name:      "non-numeric timestamp",
			secret:    secret,
			body:      body,
			signature: Sign(secret, body),
			timestamp: "not-a-number",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := newTestVerifier(tt.secret, 300*time.Second)
			if got := v.Verify(tt.body, tt.signature, tt.timestamp); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyReplayWindow(t *testing.T) {
	t.Parallel()

	const secret = "test-secret"
	body := []byte(`{"jobs":[]}`)

	tests := []struct {
		name   string
		offset int64
		want   bool
	}{
		{name: "current", offset: 0, want: true},
		{name: "exactly at the window boundary", offset: -300, want: true},
		{name: "one second past the boundary", offset: -301, want: false},
		{name: "future within the window", offset: 300, want: true},
		{name: "future past the window", offset: 301, want: false},
		// Extreme drifts overflow an int64 nanosecond count; the check
		// must reject them in integer seconds, never via Duration math.
		{name: "centuries in the past", offset: -10_000_000_000, want: false},
		{name: "centuries in the future", offset: 10_000_000_000, want: false},
		{name: "maximum representable timestamp", offset: math.MaxInt64 - 1_700_000_000, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := newTestVerifier(secret, 300*time.Second)
			ts := strconv.FormatInt(verifierNow.Unix()+tt.offset, 10)
			if got := v.Verify(body, Sign(secret, body), ts); got != tt.want {
				t.Errorf("Verify() with offset %d = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func mutateLastByte(s string) string {
	b := []byte(s)
	if b[len(b)-1] == 'a' {
		b[len(b)-1] = 'b'
	} else {
		b[len(b)-1] = 'a'
	}
	return string(b)
}

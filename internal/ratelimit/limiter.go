// Package ratelimit caps webhook requests per client key within a fixed
// window, backed by an expiring counter store.
package ratelimit

import "context"

// Limiter reports whether a request from the given client key is allowed
// under the current window. Implementations must be atomic across
// concurrent callers sharing a key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

const keyPrefix = "ratelimit:"

// Package ratelimit provides fixed-window request limiters keyed by an
// arbitrary string, typically the client IP.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether another request for key is allowed at now.
// When it is not, retryAfter tells the caller how long the window has left.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (allowed bool, retryAfter time.Duration, err error)
}

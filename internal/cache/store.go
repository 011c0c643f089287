package cache

import (
	"context"
	"time"
)

// Store is the shared counter store used for request throttling across instances.
type Store interface {
	// IncrementWithTTL bumps key and returns the new count with the time left in its window.
	// The window starts on the first increment.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

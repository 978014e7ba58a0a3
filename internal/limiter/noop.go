package limiter

import (
	"context"
	"time"
)

// Noop never limits. Used in dev mode where no database backs the counters.
type Noop struct{}

func (Noop) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return true, 0, nil
}

func (Noop) Success(context.Context, string, []byte) error { return nil }

func (Noop) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}

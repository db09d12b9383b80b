package kit

import (
	"context"
	"time"
)

// WithTimeout runs fn under a child context bounded by d.
func WithTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

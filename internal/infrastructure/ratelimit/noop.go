package ratelimit

import "context"

// Noop never throttles. Used when no Redis is configured.
type Noop struct{}

func (Noop) Wait(ctx context.Context, _ string) error {
	return ctx.Err()
}

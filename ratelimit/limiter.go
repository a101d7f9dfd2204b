// Package ratelimit provides sliding-window request limiting keyed by caller.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Config struct {
	Limit  int
	Window time.Duration
	Prefix string
}

func (c Config) normalized() Config {
	if c.Limit < 1 {
		c.Limit = 1
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Prefix == "" {
		c.Prefix = "rl"
	}
	return c
}

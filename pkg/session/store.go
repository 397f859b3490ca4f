package session

import (
	"context"
	"time"
)

// Store is the Session Store contract. Every method is a single
// linearization point with respect to any other method on the same
// session id.
type Store interface {
	Create(ctx context.Context, channel Channel, subscriber string, initialData map[string]any, ttl time.Duration) (*Record, error)
	Get(ctx context.Context, sessionID string) (*Record, error)
	FindActive(ctx context.Context, subscriber string, channel Channel) (*Record, error)
	UpdateData(ctx context.Context, sessionID string, partial map[string]any) (*Record, error)
	Touch(ctx context.Context, sessionID string) error
	End(ctx context.Context, sessionID string) error
	Sweep(ctx context.Context) (int, error)
	HealthCheck(ctx context.Context) error
}

func indexKey(channel Channel, subscriber string) string {
	return string(channel) + "\x00" + subscriber
}

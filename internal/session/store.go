package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Store is a key to blob map whose entries expire on their own TTL.
type Store interface {
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	// Load returns ErrNotFound for missing or expired entries.
	Load(ctx context.Context, id string) ([]byte, error)
	// Destroy returns ErrNotFound when there was nothing to remove.
	Destroy(ctx context.Context, id string) error
}

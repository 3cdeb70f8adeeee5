package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed request and event IDs to prevent
// duplicate processing
type IdempotencyStore interface {
	// MarkProcessed marks an ID as processed with a TTL
	// Returns true if the ID was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an ID has already been processed
	IsProcessed(ctx context.Context, id string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed IDs
	// After this duration, the same ID can be processed again
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

package ports

import (
	"context"
	"errors"
)

// ErrNotConfigured marks a dependency that is intentionally absent, such as
// the chain in degraded mode. Health reports it without failing the check.
var ErrNotConfigured = errors.New("dependency not configured")

// HealthChecker checks external dependency health.
type HealthChecker interface {
	// Ping verifies connectivity. Returns nil if healthy.
	Ping(ctx context.Context) error
	// Name returns the dependency name (e.g., "postgresql", "redis", "chain").
	Name() string
}

package chain

import (
	"context"
	"fmt"

	"agent-chain-wallet/internal/core/ports"
)

// HealthCheck implements ports.HealthChecker for the RPC node.
type HealthCheck struct {
	client ports.ChainClient
}

// NewHealthCheck creates a chain health checker.
func NewHealthCheck(client ports.ChainClient) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping reads the token name. In degraded mode it reports ErrUnavailable
// marked as ports.ErrNotConfigured.
func (h *HealthCheck) Ping(ctx context.Context) error {
	if !h.client.Available() {
		return fmt.Errorf("%w: %w", ports.ErrNotConfigured, ErrUnavailable)
	}
	_, err := h.client.TokenName(ctx)
	return err
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "chain"
}

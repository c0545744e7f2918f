package notify

import (
	"context"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"

	"github.com/rs/zerolog"
)

// LogSink writes every event to the structured log.
type LogSink struct {
	log zerolog.Logger
}

var _ ports.EventSink = LogSink{}

// NewLogSink creates a sink backed by log.
func NewLogSink(log zerolog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Emit(_ context.Context, ev domain.WalletEvent) {
	e := s.log.Info()
	if ev.Kind == domain.EventOperationFailed {
		e = s.log.Warn().Str("operation", ev.Operation).Str("error", ev.Error)
	}
	for k, v := range ev.Attributes {
		e = e.Str(k, v)
	}
	e.Str("kind", string(ev.Kind)).Str("handle", ev.Handle).Msg("wallet event")
}

// Fanout forwards each event to every sink in order.
type Fanout []ports.EventSink

func (f Fanout) Emit(ctx context.Context, ev domain.WalletEvent) {
	for _, s := range f {
		s.Emit(ctx, ev)
	}
}

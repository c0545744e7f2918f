package service

import (
	"context"
	"errors"
	"net/http"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/apperror"
)

// reportFailure emits an operation.failed event for server-side failures and
// returns err unchanged. Caller mistakes (4xx) are not reported.
func reportFailure(ctx context.Context, sink ports.EventSink, operation, handle string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
		return err
	}
	sink.Emit(ctx, domain.FailureEvent(operation, handle, err))
	return err
}

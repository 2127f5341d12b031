package services

import (
	"context"

	"github.com/promopay/promopay_backend/internal/dto"
)

// ReconcilerSvcFacade applies asynchronous gateway outcomes to the ledger
// exactly once, tolerating duplicate and out-of-order delivery.
type ReconcilerSvcFacade interface {
	// HandleWebhook authenticates a raw delivery against the gateway secret,
	// parses it and dispatches. Returns apperrors.ErrAuthenticationFailed
	// before any lookup or mutation on a bad signature.
	HandleWebhook(ctx context.Context, body []byte, signature string) error

	// ProcessEvent dispatches an already-authenticated event. Unknown event
	// types are logged and acknowledged, never an error.
	ProcessEvent(ctx context.Context, event dto.GatewayEvent) error
}

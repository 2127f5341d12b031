package queue

import "context"

// PayoutRetryQueue schedules a campaign payout or refund for re-dispatch
// after the gateway was unavailable. Implementations must be safe for
// concurrent use; a nil queue degrades to log-only alerting.
type PayoutRetryQueue interface {
	PublishRetry(ctx context.Context, campaignID string) error
}

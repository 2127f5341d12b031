package gateway

import "context"

// PayoutRequest instructs the gateway to move money out of the platform
// account to a PIX key. Amounts are minor currency units.
type PayoutRequest struct {
	PixKey      string
	Amount      int64
	ExternalID  string
	Description string
}

// PayoutResult carries the gateway's reference for an accepted payout. The
// terminal outcome arrives later through the webhook.
type PayoutResult struct {
	GatewayPaymentID string
	Status           string
}

// ChargePayer identifies who is paying an inbound charge.
type ChargePayer struct {
	Name     string
	Document string
	Email    string
}

// ChargeRequest asks the gateway to collect money into the platform account.
type ChargeRequest struct {
	Amount      int64
	ExternalID  string
	Description string
	Payer       ChargePayer
}

// ChargeResult carries the presentation details a payer needs to settle a
// PIX charge.
type ChargeResult struct {
	GatewayChargeID string
	QRCode          string
	PixCopyPaste    string
	ExpiresAt       string
}

// PaymentGateway is the external payment-rail collaborator. Implementations
// must return apperrors.ErrGatewayUnavailable on transport failure so callers
// leave the corresponding transaction PENDING rather than FAILED.
type PaymentGateway interface {
	CreatePayout(ctx context.Context, req PayoutRequest) (*PayoutResult, error)
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

	// VerifyWebhookSignature checks the HMAC signature the gateway attaches
	// to webhook deliveries against the shared secret.
	VerifyWebhookSignature(body []byte, signature string) bool
}

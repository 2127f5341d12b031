package dto

// GatewayEventData is the payload of a gateway webhook event. ID is the
// gateway's charge or payment reference; Amount is in minor currency units.
type GatewayEventData struct {
	ID          string `json:"id"`
	ExternalID  string `json:"external_id"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	FailureCode string `json:"failure_code,omitempty"`
}

// GatewayEvent is one webhook delivery from the payment gateway. Delivery is
// at-least-once and may arrive out of order.
type GatewayEvent struct {
	Type string           `json:"type"`
	Data GatewayEventData `json:"data"`
}

// Known gateway event types. Anything else is acknowledged and ignored.
const (
	EventChargePaid       = "charge.paid"
	EventChargeExpired    = "charge.expired"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// Package transfeera implements the payment gateway port against the
// Transfeera PIX API. Authentication uses the OAuth2 client-credentials
// grant; webhook deliveries are authenticated with an HMAC-SHA256 signature
// over the raw body.
package transfeera

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/promopay/promopay_backend/internal/apperrors"
	"github.com/promopay/promopay_backend/internal/core/ports/gateway"
)

// Config holds the Transfeera API credentials and endpoints.
type Config struct {
	BaseURL       string
	LoginURL      string
	ClientID      string
	ClientSecret  string
	WebhookSecret string
}

type Client struct {
	baseURL       string
	httpClient    *http.Client
	webhookSecret []byte
}

// NewClient builds a gateway client whose HTTP transport injects and
// refreshes the OAuth2 bearer token.
func NewClient(cfg Config) *Client {
	ccCfg := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.LoginURL,
	}
	httpClient := ccCfg.Client(context.Background())
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:       cfg.BaseURL,
		httpClient:    httpClient,
		webhookSecret: []byte(cfg.WebhookSecret),
	}
}

var _ gateway.PaymentGateway = (*Client)(nil)

// The Transfeera API speaks decimal BRL; the ledger speaks integer centavos.
// Conversion happens only at this boundary.
func centsToAPIAmount(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

type payoutPayload struct {
	PixKey        string          `json:"pix_key"`
	Value         decimal.Decimal `json:"value"`
	IntegrationID string          `json:"integration_id"`
	Description   string          `json:"description,omitempty"`
}

type payoutResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreatePayout submits a PIX transfer out of the platform account. The result
// only means the gateway accepted the instruction; the terminal outcome
// arrives through the webhook.
func (c *Client) CreatePayout(ctx context.Context, req gateway.PayoutRequest) (*gateway.PayoutResult, error) {
	payload := payoutPayload{
		PixKey:        req.PixKey,
		Value:         centsToAPIAmount(req.Amount),
		IntegrationID: req.ExternalID,
		Description:   req.Description,
	}

	var resp payoutResponse
	if err := c.post(ctx, "/payments/pix", payload, &resp); err != nil {
		return nil, err
	}
	return &gateway.PayoutResult{
		GatewayPaymentID: resp.ID,
		Status:           resp.Status,
	}, nil
}

type chargePayload struct {
	Value         decimal.Decimal `json:"value"`
	IntegrationID string          `json:"integration_id"`
	Description   string          `json:"description,omitempty"`
	Payer         chargePayer     `json:"payer"`
}

type chargePayer struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email,omitempty"`
}

type chargeResponse struct {
	ID           string `json:"id"`
	QRCodeImage  string `json:"qr_code_image"`
	PixCopyPaste string `json:"emv"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateCharge creates a PIX charge the payer settles to fund a deposit.
func (c *Client) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	payload := chargePayload{
		Value:         centsToAPIAmount(req.Amount),
		IntegrationID: req.ExternalID,
		Description:   req.Description,
		Payer: chargePayer{
			Name:     req.Payer.Name,
			Document: req.Payer.Document,
			Email:    req.Payer.Email,
		},
	}

	var resp chargeResponse
	if err := c.post(ctx, "/charges", payload, &resp); err != nil {
		return nil, err
	}
	return &gateway.ChargeResult{
		GatewayChargeID: resp.ID,
		QRCode:          resp.QRCodeImage,
		PixCopyPaste:    resp.PixCopyPaste,
		ExpiresAt:       resp.ExpiresAt,
	}, nil
}

// VerifyWebhookSignature checks the hex-encoded HMAC-SHA256 the gateway
// attaches to each delivery. Comparison is constant time.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, c.webhookSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// post sends a JSON request and decodes the JSON response. Transport errors
// and 5xx responses map to apperrors.ErrGatewayUnavailable so callers leave
// their pending transactions untouched for re-dispatch.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", apperrors.ErrGatewayUnavailable, err)
	}

	switch {
	case httpResp.StatusCode >= 500:
		return fmt.Errorf("%w: gateway returned %d", apperrors.ErrGatewayUnavailable, httpResp.StatusCode)
	case httpResp.StatusCode >= 400:
		return fmt.Errorf("%w: gateway rejected request with %d: %s", apperrors.ErrValidation, httpResp.StatusCode, bytes.TrimSpace(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

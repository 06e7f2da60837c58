package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"

	"github.com/google/uuid"
)

// ChargeResult is what the gateway reports back for an initiated charge.
type ChargeResult struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
}

// Gateway is the payment provider boundary. The real SDK lives behind this
// interface; the simulated implementation below stands in for it everywhere
// outside production.
type Gateway interface {
	InitiateCharge(orderID string, amount float64, method string) (ChargeResult, error)
	Refund(transactionID string, amount float64) error
}

var ErrUnsupportedMethod = errors.New("unsupported payment method")

// SimulatedGateway accepts every charge immediately. COD charges stay PENDING
// until the delivery completes; everything else is PAID on the spot.
type SimulatedGateway struct{}

func (SimulatedGateway) InitiateCharge(orderID string, amount float64, method string) (ChargeResult, error) {
	switch method {
	case "CARD", "UPI", "WALLET":
		return ChargeResult{TransactionID: uuid.NewString(), Status: "PAID"}, nil
	case "COD":
		return ChargeResult{TransactionID: uuid.NewString(), Status: "PENDING"}, nil
	default:
		return ChargeResult{}, ErrUnsupportedMethod
	}
}

func (SimulatedGateway) Refund(transactionID string, amount float64) error {
	return nil
}

// WebhookSignature computes the hex HMAC-SHA256 of the raw webhook body with
// the shared secret, matching what the gateway sends in X-Webhook-Signature.
func WebhookSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the signature header against the raw body using
// constant-time comparison.
func VerifyWebhook(body []byte, signature string) bool {
	secret := os.Getenv("PAYMENT_WEBHOOK_SECRET")
	if secret == "" || signature == "" {
		return false
	}
	expected := WebhookSignature(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

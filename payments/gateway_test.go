package payments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnlineMethodsArePaidImmediately(t *testing.T) {
	gw := SimulatedGateway{}
	for _, method := range []string{"CARD", "UPI", "WALLET"} {
		result, err := gw.InitiateCharge("order-1", 450, method)
		require.NoError(t, err, method)
		require.Equal(t, "PAID", result.Status, method)
		require.NotEmpty(t, result.TransactionID, method)
	}
}

func TestCashOnDeliveryStaysPending(t *testing.T) {
	result, err := SimulatedGateway{}.InitiateCharge("order-1", 450, "COD")
	require.NoError(t, err)
	require.Equal(t, "PENDING", result.Status)
	require.NotEmpty(t, result.TransactionID)
}

func TestUnknownMethodIsRejected(t *testing.T) {
	_, err := SimulatedGateway{}.InitiateCharge("order-1", 450, "CHEQUE")
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestTransactionIDsAreUnique(t *testing.T) {
	gw := SimulatedGateway{}
	first, err := gw.InitiateCharge("order-1", 450, "CARD")
	require.NoError(t, err)
	second, err := gw.InitiateCharge("order-1", 450, "CARD")
	require.NoError(t, err)
	require.NotEqual(t, first.TransactionID, second.TransactionID)
}

func TestVerifyWebhookAcceptsValidSignature(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "s3cret")
	body := []byte(`{"transaction_id":"txn-1","status":"PAID"}`)

	require.True(t, VerifyWebhook(body, WebhookSignature(body, "s3cret")))
}

func TestVerifyWebhookRejectsTamperedBody(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "s3cret")
	body := []byte(`{"transaction_id":"txn-1","status":"PAID"}`)
	sig := WebhookSignature(body, "s3cret")

	tampered := []byte(`{"transaction_id":"txn-1","status":"FAILED"}`)
	require.False(t, VerifyWebhook(tampered, sig))
}

func TestVerifyWebhookRejectsWrongSecret(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "s3cret")
	body := []byte(`{"transaction_id":"txn-1","status":"PAID"}`)

	require.False(t, VerifyWebhook(body, WebhookSignature(body, "other")))
}

func TestVerifyWebhookRequiresConfiguredSecret(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "")
	body := []byte(`{}`)

	require.False(t, VerifyWebhook(body, WebhookSignature(body, "anything")))
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "s3cret")
	require.False(t, VerifyWebhook(body, ""))
}

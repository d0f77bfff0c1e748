package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider()

	intent, err := p.CreateIntent(ctx, CreateIntentParams{AmountCents: 60000})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.ID, "mock_pi_"))
	assert.Equal(t, StatusPending, intent.Status)
	assert.Equal(t, "ZAR", intent.Currency)
	assert.Equal(t, int64(60000), intent.AmountCents)

	confirmed, err := p.ConfirmPayment(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, confirmed.Status)
	assert.Equal(t, intent.ID, confirmed.ID)

	assert.NoError(t, p.CancelPayment(ctx, intent.ID))
	assert.NoError(t, p.VerifyWebhook([]byte("anything"), "any-signature"))
}

func TestPayloadToSign(t *testing.T) {
	payload, err := payloadToSign("https://api.example.com/public-api/v1/api/payment", `{"a":"b"}`)
	require.NoError(t, err)
	assert.Equal(t, `/public-api/v1/api/payment{\"a\":\"b\"}`, payload)

	_, err = payloadToSign("://bad url", "")
	assert.Error(t, err)
}

func TestEscapePayload(t *testing.T) {
	assert.Equal(t, `\"x\"`, escapePayload(`"x"`))
	assert.Equal(t, `\\`, escapePayload(`\`))
	assert.Equal(t, `\'a\'`, escapePayload(`'a'`))
	assert.Equal(t, "plain", escapePayload("plain"))
}

func TestPaylinkGateway_VerifyWebhook(t *testing.T) {
	g := &paylinkGateway{
		appKey:      "test-app-key",
		callbackURL: "https://shop.example.com/webhooks/payment",
	}

	body := []byte(`{"paylinkID":"pl-1","status":"SUCCESS"}`)

	payload, err := payloadToSign(g.callbackURL, string(body))
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("test-app-key"))
	mac.Write([]byte(payload))
	goodSig := hex.EncodeToString(mac.Sum(nil))

	assert.NoError(t, g.VerifyWebhook(body, goodSig))
	assert.ErrorIs(t, g.VerifyWebhook(body, "deadbeef"), ErrInvalidSignature)
	assert.ErrorIs(t, g.VerifyWebhook([]byte(`tampered`), goodSig), ErrInvalidSignature)
}

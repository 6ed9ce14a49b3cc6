package webhooks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_test_secret"

var testPayload = []byte(`{
  "id": "evt_test_webhook",
  "object": "event",
  "api_version": "2020-08-27",
  "type": "checkout.session.completed",
  "data": {"object": {"id": "cs_test_1", "object": "checkout.session", "metadata": {"payment_type": "ticket"}}}
}`)

func TestVerifyValidSignature(t *testing.T) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   testPayload,
		Secret:    testSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	evt, err := NewVerifier(testSecret).Verify(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "evt_test_webhook", evt.ID)
	assert.Equal(t, stripe.EventTypeCheckoutSessionCompleted, evt.Type)

	decoded, err := Decode(evt)
	require.NoError(t, err)
	completed, ok := decoded.(CheckoutCompleted)
	require.True(t, ok)
	assert.Equal(t, "cs_test_1", completed.Session.ID)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   testPayload,
		Secret:    "whsec_other",
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	_, err := NewVerifier(testSecret).Verify(signed.Payload, signed.Header)
	var authErr *AuthenticationError
	assert.True(t, errors.As(err, &authErr))
	assert.True(t, IsTerminal(err))
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   testPayload,
		Secret:    testSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	tampered := append([]byte{}, signed.Payload...)
	tampered[len(tampered)-2] = ' '

	_, err := NewVerifier(testSecret).Verify(tampered, signed.Header)
	assert.Error(t, err)
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   testPayload,
		Secret:    testSecret,
		Timestamp: time.Now().Add(-time.Hour),
		Scheme:    "v1",
	})

	_, err := NewVerifier(testSecret).Verify(signed.Payload, signed.Header)
	assert.Error(t, err)
}

func TestVerifyMissingHeader(t *testing.T) {
	_, err := NewVerifier(testSecret).Verify(testPayload, "")
	assert.ErrorIs(t, err, ErrMissingSignature)

	_, err = NewVerifier("").Verify(testPayload, "")
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerifyUnconfiguredSecret(t *testing.T) {
	_, err := NewVerifier("").Verify(testPayload, "t=1,v1=abc")
	assert.ErrorIs(t, err, ErrWebhookSecretMissing)
	assert.False(t, IsTerminal(err))
}

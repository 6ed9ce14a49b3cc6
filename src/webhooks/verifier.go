package webhooks

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Verifier authenticates Stripe notifications against the endpoint's signing
// secret. It must be given the raw request body exactly as received.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

func (v *Verifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	if signature == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	if v == nil || v.secret == "" {
		return stripe.Event{}, ErrWebhookSecretMissing
	}
	// Payloads are decoded into our own types, so the account's pinned API
	// version does not need to match the library's.
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, &AuthenticationError{Err: err}
	}
	return event, nil
}

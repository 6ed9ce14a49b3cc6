package webhooks

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSignature     = errors.New("missing stripe-signature header")
	ErrWebhookSecretMissing = errors.New("webhook secret not configured")

	// ErrMissingReference means the event does not carry the identifier needed
	// to find the record it is about. Redelivery cannot fix that.
	ErrMissingReference = errors.New("missing reference")
	// ErrInvalidPayload means the event body could not be decoded.
	ErrInvalidPayload = errors.New("invalid event payload")
	// ErrRecordNotFound means the referenced record does not exist yet.
	ErrRecordNotFound = errors.New("record not found")
)

// AuthenticationError wraps a signature verification failure.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsTerminal reports whether a handler failure should be acknowledged to
// Stripe instead of asking for redelivery.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}
	var authErr *AuthenticationError
	return errors.Is(err, ErrMissingReference) ||
		errors.Is(err, ErrInvalidPayload) ||
		errors.Is(err, ErrMissingSignature) ||
		errors.As(err, &authErr)
}

func missingReference(field string, source string) error {
	return fmt.Errorf("%w: %s on %s", ErrMissingReference, field, source)
}

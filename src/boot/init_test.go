package boot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveWebhookSecret(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, id string) (string, error) {
		calls++
		if id == "prod/stripe/webhook" {
			return "whsec_from_aws", nil
		}
		return "", errors.New("ResourceNotFoundException")
	}

	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("STRIPE_WEBHOOK_SECRET_ID", "prod/stripe/webhook")
	assert.Equal(t, "whsec_env", resolveWebhookSecret(context.Background(), fetch))
	assert.Zero(t, calls)

	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	assert.Equal(t, "whsec_from_aws", resolveWebhookSecret(context.Background(), fetch))

	t.Setenv("STRIPE_WEBHOOK_SECRET_ID", "missing")
	assert.Empty(t, resolveWebhookSecret(context.Background(), fetch))

	t.Setenv("STRIPE_WEBHOOK_SECRET_ID", "")
	assert.Empty(t, resolveWebhookSecret(context.Background(), fetch))
}

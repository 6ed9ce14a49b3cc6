package lib

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	"github.com/wasnasmay/altess-final-sub004/src/config"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	sc := stripe.NewClient(config.StripeSecretKey())
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// RetrieveCheckoutSession returns the session as Stripe currently sees it.
func RetrieveCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	sc := GetStripeClient()
	return sc.V1CheckoutSessions.Retrieve(ctx, id, nil)
}

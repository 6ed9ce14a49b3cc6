package webhooks

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v82"
)

// PeriodSource looks up the current billing period of a Stripe subscription.
type PeriodSource interface {
	SubscriptionPeriod(ctx context.Context, subscriptionID string) (start time.Time, end time.Time, err error)
}

var errNoPeriod = errors.New("subscription has no billing period")

type StripePeriodSource struct {
	client *stripe.Client
}

func NewStripePeriodSource(client *stripe.Client) *StripePeriodSource {
	return &StripePeriodSource{client: client}
}

func (s *StripePeriodSource) SubscriptionPeriod(ctx context.Context, subscriptionID string) (time.Time, time.Time, error) {
	sub, err := s.client.V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].CurrentPeriodEnd == 0 {
		return time.Time{}, time.Time{}, errNoPeriod
	}
	item := sub.Items.Data[0]
	return time.Unix(item.CurrentPeriodStart, 0).UTC(), time.Unix(item.CurrentPeriodEnd, 0).UTC(), nil
}

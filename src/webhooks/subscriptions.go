package webhooks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/wasnasmay/altess-final-sub004/src/config"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"github.com/wasnasmay/altess-final-sub004/src/models/scopes"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

type subscriptionReference struct {
	UserID         string `validate:"required,uuid"`
	SubscriptionID string `validate:"required"`
}

// linkSubscription attaches the Stripe subscription created by a checkout to
// the member's subscription row and activates it.
func (r *Reconciler) linkSubscription(ctx context.Context, cs CheckoutSession) error {
	ref := subscriptionReference{
		UserID:         cs.Metadata["user_id"],
		SubscriptionID: cs.Subscription.String(),
	}
	if err := validate.Struct(ref); err != nil {
		if ref.SubscriptionID == "" {
			return missingReference("subscription", cs.ID)
		}
		return missingReference("user_id", cs.ID)
	}
	userID := uuid.MustParse(ref.UserID)

	start, end := r.subscriptionPeriod(ctx, ref.SubscriptionID)
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? OR stripe_subscription_id = ?", userID, ref.SubscriptionID).
		Updates(map[string]any{
			"stripe_subscription_id": ref.SubscriptionID,
			"status":                 types.SUBSCRIPTION_ACTIVE,
			"current_period_start":   start,
			"current_period_end":     end,
		})
	if res.Error != nil {
		return fmt.Errorf("could not link subscription %s: %w", ref.SubscriptionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subscription for user %s: %w", userID, ErrRecordNotFound)
	}
	log.Printf("[CheckoutSession] Subscription %s linked to user %s until %s\n", ref.SubscriptionID, userID, end.Format(time.RFC3339))
	return nil
}

func (r *Reconciler) subscriptionPeriod(ctx context.Context, subscriptionID string) (time.Time, time.Time) {
	if r.periods != nil {
		start, end, err := r.periods.SubscriptionPeriod(ctx, subscriptionID)
		if err == nil {
			return start, end
		}
		log.Printf("[Subscription] Could not fetch period for %s, using default: %s\n", subscriptionID, err.Error())
	}
	now := r.now()
	return now, now.Add(config.DEFAULT_SUBSCRIPTION_PERIOD)
}

func (r *Reconciler) markInvoicePaid(ctx context.Context, inv Invoice) error {
	subID := inv.SubscriptionID()
	if subID == "" {
		log.Printf("[Invoice] %s has no subscription\n", inv.ID)
		return nil
	}
	return r.updateSubscription(ctx, subID, map[string]any{
		"status":          types.SUBSCRIPTION_ACTIVE,
		"last_payment_at": r.now(),
	})
}

func (r *Reconciler) markInvoiceFailed(ctx context.Context, inv Invoice) error {
	subID := inv.SubscriptionID()
	if subID == "" {
		log.Printf("[Invoice] %s has no subscription\n", inv.ID)
		return nil
	}
	return r.updateSubscription(ctx, subID, map[string]any{
		"status": types.SUBSCRIPTION_PAST_DUE,
	})
}

func (r *Reconciler) syncSubscription(ctx context.Context, sub SubscriptionObject) error {
	if sub.ID == "" {
		return missingReference("id", "subscription")
	}
	updates := map[string]any{
		"status": sub.Status,
	}
	start, end := sub.Period()
	if start != nil {
		updates["current_period_start"] = *start
	}
	if end != nil {
		updates["current_period_end"] = *end
	}
	return r.updateSubscription(ctx, sub.ID, updates)
}

func (r *Reconciler) cancelSubscription(ctx context.Context, sub SubscriptionObject) error {
	if sub.ID == "" {
		return missingReference("id", "subscription")
	}
	return r.updateSubscription(ctx, sub.ID, map[string]any{
		"status":       types.SUBSCRIPTION_CANCELLED,
		"cancelled_at": r.now(),
	})
}

// updateSubscription applies a lifecycle change to the row linked to a Stripe
// subscription. Subscriptions this marketplace never linked are skipped.
func (r *Reconciler) updateSubscription(ctx context.Context, stripeSubscriptionID string, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Scopes(scopes.WithStripeSubscription(stripeSubscriptionID)).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("could not update subscription %s: %w", stripeSubscriptionID, res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("[Subscription] No subscription linked to %s\n", stripeSubscriptionID)
		return nil
	}
	log.Printf("[Subscription] %s updated: %v\n", stripeSubscriptionID, updates["status"])
	return nil
}

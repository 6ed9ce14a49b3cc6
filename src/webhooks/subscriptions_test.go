package webhooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/wasnasmay/altess-final-sub004/src/config"
	"github.com/wasnasmay/altess-final-sub004/src/db/dbtest"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

func seedSubscription(t *testing.T, db *gorm.DB, stripeID string) models.Subscription {
	t.Helper()
	sub := models.Subscription{UserID: uuid.New(), Plan: "premium"}
	if stripeID != "" {
		sub.StripeSubscriptionID = &stripeID
		sub.Status = types.SUBSCRIPTION_ACTIVE
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}

func subscriptionCheckout(t *testing.T, id string, userID uuid.UUID, subscription string) stripe.Event {
	return newEvent(t, id, stripe.EventTypeCheckoutSessionCompleted, map[string]any{
		"id":           "cs_" + id,
		"subscription": subscription,
		"metadata": map[string]string{
			"payment_type": "subscription",
			"user_id":      userID.String(),
		},
	})
}

func TestLinkSubscriptionUsesStripePeriod(t *testing.T) {
	db := dbtest.NewSQLiteDB(t)
	sub := seedSubscription(t, db, "")
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	r := NewReconciler(db, WithClock(clock), WithPeriodSource(fixedPeriods{start: start, end: end}))

	require.NoError(t, r.Handle(context.Background(), subscriptionCheckout(t, "evt_sub", sub.UserID, "sub_123")))

	got := reload[models.Subscription](t, db, sub.ID)
	require.NotNil(t, got.StripeSubscriptionID)
	assert.Equal(t, "sub_123", *got.StripeSubscriptionID)
	assert.Equal(t, types.SUBSCRIPTION_ACTIVE, got.Status)
	require.NotNil(t, got.CurrentPeriodStart)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.True(t, start.Equal(*got.CurrentPeriodStart))
	assert.True(t, end.Equal(*got.CurrentPeriodEnd))
}

func TestLinkSubscriptionFallsBackToDefaultPeriod(t *testing.T) {
	db := dbtest.NewSQLiteDB(t)
	sub := seedSubscription(t, db, "")
	r := NewReconciler(db, WithClock(clock), WithPeriodSource(fixedPeriods{err: errors.New("stripe unavailable")}))

	require.NoError(t, r.Handle(context.Background(), subscriptionCheckout(t, "evt_sub", sub.UserID, "sub_123")))

	got := reload[models.Subscription](t, db, sub.ID)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.True(t, fixedNow.Equal(*got.CurrentPeriodStart))
	assert.True(t, fixedNow.Add(config.DEFAULT_SUBSCRIPTION_PERIOD).Equal(*got.CurrentPeriodEnd))
}

func TestLinkSubscriptionMissingReferences(t *testing.T) {
	db, mock := dbtest.NewMockDB(t)
	r := NewReconciler(db, WithClock(clock))

	err := r.linkSubscription(context.Background(), CheckoutSession{ID: "cs_1", Metadata: map[string]string{"user_id": uuid.NewString()}})
	assert.ErrorIs(t, err, ErrMissingReference)
	err = r.linkSubscription(context.Background(), CheckoutSession{ID: "cs_2", Subscription: "sub_1"})
	assert.ErrorIs(t, err, ErrMissingReference)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkSubscriptionForUnknownUserIsRetried(t *testing.T) {
	db := dbtest.NewSQLiteDB(t)
	r := NewReconciler(db, WithClock(clock))

	err := r.Handle(context.Background(), subscriptionCheckout(t, "evt_sub", uuid.New(), "sub_404"))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestInvoiceLifecycle(t *testing.T) {
	db := dbtest.NewSQLiteDB(t)
	sub := seedSubscription(t, db, "sub_life")
	r := NewReconciler(db, WithClock(clock))
	ctx := context.Background()

	failed := newEvent(t, "evt_inv_failed", stripe.EventTypeInvoicePaymentFailed, map[string]any{
		"id":           "in_1",
		"subscription": "sub_life",
	})
	require.NoError(t, r.Handle(ctx, failed))
	assert.Equal(t, types.SUBSCRIPTION_PAST_DUE, reload[models.Subscription](t, db, sub.ID).Status)

	paid := newEvent(t, "evt_inv_paid", stripe.EventTypeInvoicePaid, map[string]any{
		"id": "in_2",
		"parent": map[string]any{
			"subscription_details": map[string]any{"subscription": "sub_life"},
		},
	})
	require.NoError(t, r.Handle(ctx, paid))
	got := reload[models.Subscription](t, db, sub.ID)
	assert.Equal(t, types.SUBSCRIPTION_ACTIVE, got.Status)
	require.NotNil(t, got.LastPaymentAt)
	assert.True(t, fixedNow.Equal(*got.LastPaymentAt))
}

func TestSubscriptionUpdatedWithStatusOnly(t *testing.T) {
	db := dbtest.NewSQLiteDB(t)
	sub := seedSubscription(t, db, "sub_status")
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]any{
		"current_period_start": start,
		"current_period_end":   end,
	}).Error)
	r := NewReconciler(db, WithClock(clock))

	evt := newEvent(t, "evt_sub_upd", stripe.EventTypeCustomerSubscriptionUpdated, map[string]any{
		"id":     "sub_status",
		"status": "unpaid",
	})
	require.NoError(t, r.Handle(context.Background(), evt))

	got := reload[models.Subscription](t, db, sub.ID)
	assert.Equal(t, "unpaid", got.Status)
	require.NotNil(t, got.CurrentPeriodStart)
	assert.True(t, start.Equal(*got.CurrentPeriodStart))
	assert.True(t, end.Equal(*got.CurrentPeriodEnd))
}

func TestSubscriptionUpdatedWithItemPeriod(t *testing.T) {
	db := dbtest.NewSQLiteDB(t)
	sub := seedSubscription(t, db, "sub_items")
	r := NewReconciler(db, WithClock(clock))
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	evt := newEvent(t, "evt_sub_items", stripe.EventTypeCustomerSubscriptionUpdated, map[string]any{
		"id":     "sub_items",
		"status": "active",
		"items": map[string]any{
			"data": []map[string]any{{
				"current_period_start": start.Unix(),
				"current_period_end":   end.Unix(),
			}},
		},
	})
	require.NoError(t, r.Handle(context.Background(), evt))

	got := reload[models.Subscription](t, db, sub.ID)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.True(t, start.Equal(*got.CurrentPeriodStart))
	assert.True(t, end.Equal(*got.CurrentPeriodEnd))
}

func TestSubscriptionDeleted(t *testing.T) {
	db := dbtest.NewSQLiteDB(t)
	sub := seedSubscription(t, db, "sub_gone")
	r := NewReconciler(db, WithClock(clock))

	evt := newEvent(t, "evt_sub_del", stripe.EventTypeCustomerSubscriptionDeleted, map[string]any{
		"id":     "sub_gone",
		"status": "canceled",
	})
	require.NoError(t, r.Handle(context.Background(), evt))

	got := reload[models.Subscription](t, db, sub.ID)
	assert.Equal(t, types.SUBSCRIPTION_CANCELLED, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, fixedNow.Equal(*got.CancelledAt))
}

func TestLifecycleEventsForUnknownSubscriptionAreNoops(t *testing.T) {
	db := dbtest.NewSQLiteDB(t)
	sub := seedSubscription(t, db, "sub_known")
	r := NewReconciler(db, WithClock(clock))
	ctx := context.Background()

	for _, evt := range []stripe.Event{
		newEvent(t, "evt_1", stripe.EventTypeInvoicePaid, map[string]any{"id": "in_1", "subscription": "sub_other"}),
		newEvent(t, "evt_2", stripe.EventTypeInvoicePaymentFailed, map[string]any{"id": "in_2", "subscription": "sub_other"}),
		newEvent(t, "evt_3", stripe.EventTypeInvoicePaid, map[string]any{"id": "in_3"}),
		newEvent(t, "evt_4", stripe.EventTypeCustomerSubscriptionUpdated, map[string]any{"id": "sub_other", "status": "past_due"}),
		newEvent(t, "evt_5", stripe.EventTypeCustomerSubscriptionDeleted, map[string]any{"id": "sub_other"}),
	} {
		assert.NoError(t, r.Handle(ctx, evt), evt.ID)
	}

	got := reload[models.Subscription](t, db, sub.ID)
	assert.Equal(t, types.SUBSCRIPTION_ACTIVE, got.Status)
	assert.Nil(t, got.CancelledAt)
	assert.Nil(t, got.LastPaymentAt)
}

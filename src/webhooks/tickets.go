package webhooks

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"github.com/wasnasmay/altess-final-sub004/src/models/scopes"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

var validate = validator.New()

type ticketReference struct {
	TicketID string `validate:"required,uuid"`
}

func ticketReferenceFrom(md map[string]string, source string) (uuid.UUID, error) {
	ref := ticketReference{TicketID: md["ticket_id"]}
	if err := validate.Struct(ref); err != nil {
		return uuid.Nil, missingReference("ticket_id", source)
	}
	return uuid.Parse(ref.TicketID)
}

// confirmTicketPurchase moves a ticket purchase to completed/valid and applies
// its inventory and payout side effects exactly once. Everything that touches
// the database happens in one transaction so a failure part-way leaves the
// purchase pending and Stripe's redelivery starts over.
func (r *Reconciler) confirmTicketPurchase(ctx context.Context, cs CheckoutSession) error {
	id, err := ticketReferenceFrom(cs.Metadata, cs.ID)
	if err != nil {
		return err
	}

	now := r.now()
	updates := map[string]any{
		"payment_status":    types.PAYMENT_COMPLETED,
		"ticket_status":     types.TICKET_VALID,
		"stripe_session_id": cs.ID,
		"paid_at":           now,
	}
	if pi := cs.PaymentIntent.String(); pi != "" {
		updates["stripe_payment_intent_id"] = pi
	}

	var purchase models.TicketPurchase
	confirmed := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := transitionOnce(tx, &models.TicketPurchase{}, id, "payment_status", types.PAYMENT_COMPLETED, updates)
		if err != nil {
			return fmt.Errorf("ticket purchase %s: %w", id, err)
		}
		if !applied {
			log.Printf("[CheckoutSession] Ticket purchase %s already completed, skipping side effects\n", id)
			return nil
		}

		if err := tx.
			Preload("Event").
			Preload("Event.Organizer").
			Scopes(scopes.WithID(id)).
			First(&purchase).
			Error; err != nil {
			return fmt.Errorf("could not re-fetch ticket purchase %s: %w", id, err)
		}
		if purchase.Event == nil {
			return fmt.Errorf("%w: event %s for ticket purchase %s", ErrRecordNotFound, purchase.EventID, id)
		}

		res := tx.
			Model(&models.PublicEvent{}).
			Scopes(scopes.WithID(purchase.EventID)).
			UpdateColumn("tickets_sold", gorm.Expr("tickets_sold + ?", purchase.Quantity))
		if res.Error != nil {
			return fmt.Errorf("could not update tickets sold for event %s: %w", purchase.EventID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: event %s", ErrRecordNotFound, purchase.EventID)
		}

		if purchase.OrganizerAmount.Valid {
			organizerID := purchase.Event.OrganizerID
			res := tx.
				Model(&models.EventOrganizer{}).
				Scopes(scopes.WithID(organizerID)).
				UpdateColumn("pending_earnings", gorm.Expr("pending_earnings + ?", purchase.OrganizerAmount.Decimal))
			if res.Error != nil {
				return fmt.Errorf("could not accrue earnings for organizer %s: %w", organizerID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: organizer %s", ErrRecordNotFound, organizerID)
			}
		}
		confirmed = true
		return nil
	})
	if err != nil {
		return err
	}
	if confirmed {
		log.Printf("[CheckoutSession] Ticket purchase %s confirmed: qty=%d event=%s\n", id, purchase.Quantity, purchase.EventID)
		r.notify(purchase.ToNotification())
	}
	return nil
}

// holdTicketPurchase records the session on a purchase whose payment has not
// settled. The purchase stays pending: no ticket, no counters, no email until
// the async outcome arrives.
func (r *Reconciler) holdTicketPurchase(ctx context.Context, cs CheckoutSession) error {
	id, err := ticketReferenceFrom(cs.Metadata, cs.ID)
	if err != nil {
		return err
	}
	updates := map[string]any{"stripe_session_id": cs.ID}
	if pi := cs.PaymentIntent.String(); pi != "" {
		updates["stripe_payment_intent_id"] = pi
	}

	db := r.db.WithContext(ctx)
	res := db.
		Model(&models.TicketPurchase{}).
		Scopes(scopes.WithID(id)).
		Where("payment_status = ?", types.PAYMENT_PENDING).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("could not record session on ticket purchase %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.TicketPurchase{}).Scopes(scopes.WithID(id)).Count(&count).Error; err != nil {
			return fmt.Errorf("ticket purchase %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("ticket purchase %s: %w", id, ErrRecordNotFound)
		}
		log.Printf("[CheckoutSession] Ticket purchase %s already settled, ignoring unpaid session %s\n", id, cs.ID)
		return nil
	}
	log.Printf("[CheckoutSession] Ticket purchase %s awaiting delayed payment on %s\n", id, cs.ID)
	return nil
}

// handlePaymentFailed cancels the pending ticket purchase behind a failed
// payment intent. Nothing else is undone: counters only move on success.
func (r *Reconciler) handlePaymentFailed(ctx context.Context, pi PaymentIntent) error {
	log.Printf("[PaymentIntent] ID: %s %s\n", pi.ID, pi.Status)
	var lookups []func(*gorm.DB) *gorm.DB
	if pi.ID != "" {
		lookups = append(lookups, func(db *gorm.DB) *gorm.DB {
			return db.Where("stripe_payment_intent_id = ?", pi.ID)
		})
	}
	if id, err := ticketReferenceFrom(pi.Metadata, pi.ID); err == nil {
		lookups = append(lookups, scopes.WithID(id))
	}
	return r.cancelTicketPurchase(ctx, pi.ID, lookups...)
}

func (r *Reconciler) cancelTicketPurchase(ctx context.Context, paymentIntentID string, lookups ...func(*gorm.DB) *gorm.DB) error {
	var purchase models.TicketPurchase
	found := false
	for _, lookup := range lookups {
		err := r.db.WithContext(ctx).Scopes(lookup).First(&purchase).Error
		if err == nil {
			found = true
			break
		}
		if !isNotFound(err) {
			return err
		}
	}
	if !found {
		log.Printf("[PaymentIntent] No ticket purchase for %s, nothing to cancel\n", paymentIntentID)
		return nil
	}
	if purchase.Confirmed() {
		log.Printf("[PaymentIntent] Ticket purchase %s is already completed, not cancelling\n", purchase.ID)
		return nil
	}

	updates := map[string]any{
		"payment_status": types.PAYMENT_CANCELLED,
		"ticket_status":  types.TICKET_CANCELLED,
	}
	if paymentIntentID != "" && purchase.StripePaymentIntentID == nil {
		updates["stripe_payment_intent_id"] = paymentIntentID
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TicketPurchase{}).
		Scopes(scopes.WithID(purchase.ID)).
		Where("payment_status <> ?", types.PAYMENT_COMPLETED).
		Updates(updates).
		Error; err != nil {
		return fmt.Errorf("could not cancel ticket purchase %s: %w", purchase.ID, err)
	}
	log.Printf("[PaymentIntent] Ticket purchase %s cancelled\n", purchase.ID)
	return nil
}

// transitionOnce writes updates to the row with the given id unless its
// status column already holds the terminal value. It reports whether this
// call performed the transition; a missing row is ErrRecordNotFound.
func transitionOnce(tx *gorm.DB, model any, id uuid.UUID, column string, terminal any, updates map[string]any) (bool, error) {
	res := tx.
		Model(model).
		Scopes(scopes.WithID(id)).
		Where(fmt.Sprintf("%s <> ?", column), terminal).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	var count int64
	if err := tx.Model(model).Scopes(scopes.WithID(id)).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrRecordNotFound
	}
	return false, nil
}

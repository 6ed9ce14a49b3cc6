package webhooks

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

type orderReference struct {
	OrderID string `validate:"required,uuid"`
}

func (r *Reconciler) markOrderPaid(ctx context.Context, cs CheckoutSession) error {
	ref := orderReference{OrderID: cs.Metadata["order_id"]}
	if err := validate.Struct(ref); err != nil {
		return missingReference("order_id", cs.ID)
	}
	id := uuid.MustParse(ref.OrderID)

	updates := map[string]any{
		"payment_status": types.ORDER_PAID,
		"paid_at":        r.now(),
	}
	if pi := cs.PaymentIntent.String(); pi != "" {
		updates["stripe_payment_intent_id"] = pi
	}
	applied, err := transitionOnce(r.db.WithContext(ctx), &models.Order{}, id, "payment_status", types.ORDER_PAID, updates)
	if errors.Is(err, ErrRecordNotFound) {
		return fmt.Errorf("order %s: %w", id, err)
	}
	if err != nil {
		return fmt.Errorf("could not mark order %s paid: %w", id, err)
	}
	if !applied {
		log.Printf("[CheckoutSession] Order %s already paid\n", id)
		return nil
	}
	log.Printf("[CheckoutSession] Order %s paid\n", id)
	return nil
}

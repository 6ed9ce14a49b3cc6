package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

// Order is a non-ticket product purchase.
type Order struct {
	ID                    uuid.UUID         `gorm:"primarykey;type:uuid" json:"id"`
	BuyerEmail            string            `json:"buyer_email,omitempty"`
	Amount                decimal.Decimal   `gorm:"type:numeric(12,2)" json:"amount"`
	Currency              string            `gorm:"default:'eur'" json:"currency,omitempty"`
	PaymentStatus         types.OrderStatus `gorm:"default:'pending'" json:"payment_status"`
	StripePaymentIntentID *string           `json:"stripe_payment_intent_id,omitempty"`
	PaidAt                *time.Time        `json:"paid_at,omitempty"`
	Metadata              types.JSONB       `gorm:"type:jsonb" json:"metadata,omitempty"`

	types.Timestamps
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

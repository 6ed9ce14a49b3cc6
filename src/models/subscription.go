package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

// Subscription mirrors a Stripe subscription for a marketplace member. The
// status column is a passthrough of whatever Stripe reports.
type Subscription struct {
	ID                   uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Plan                 string     `json:"plan,omitempty"`
	StripeSubscriptionID *string    `gorm:"uniqueIndex" json:"stripe_subscription_id,omitempty"`
	Status               string     `gorm:"default:'pending'" json:"status"`
	CurrentPeriodStart   *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	LastPaymentAt        *time.Time `json:"last_payment_at,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`

	types.Timestamps
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

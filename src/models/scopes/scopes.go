package scopes

import (
	"time"

	"github.com/google/uuid"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

func WithID(id uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithStripeSubscription(id string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("stripe_subscription_id = ?", id)
	}
}

func WithPendingStatus(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", types.NOTIFICATION_PENDING)
}

func DueBefore(t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("next_attempt_at <= ?", t)
	}
}

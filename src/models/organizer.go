package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

type EventOrganizer struct {
	ID              uuid.UUID       `gorm:"primarykey;type:uuid" json:"id"`
	CompanyName     string          `json:"company_name,omitempty"`
	Email           string          `json:"email,omitempty"`
	PendingEarnings decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"pending_earnings"`

	Events []PublicEvent `gorm:"foreignKey:OrganizerID" json:"-"`

	types.Timestamps
}

func (o *EventOrganizer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

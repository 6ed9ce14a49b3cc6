package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

type TicketPurchase struct {
	ID                    uuid.UUID           `gorm:"primarykey;type:uuid" json:"id"`
	EventID               uuid.UUID           `gorm:"type:uuid;index" json:"event_id"`
	TierName              string              `json:"tier_name,omitempty"`
	Quantity              int                 `json:"quantity"`
	UnitPrice             decimal.Decimal     `gorm:"type:numeric(12,2)" json:"unit_price"`
	FinalAmount           decimal.Decimal     `gorm:"type:numeric(12,2)" json:"final_amount"`
	BuyerName             string              `json:"buyer_name,omitempty"`
	BuyerEmail            string              `json:"buyer_email,omitempty"`
	BuyerPhone            string              `json:"buyer_phone,omitempty"`
	PaymentStatus         types.PaymentStatus `gorm:"default:'pending';index" json:"payment_status"`
	TicketStatus          types.TicketStatus  `gorm:"default:'pending'" json:"ticket_status"`
	StripeSessionID       *string             `gorm:"index" json:"stripe_session_id,omitempty"`
	StripePaymentIntentID *string             `gorm:"index" json:"stripe_payment_intent_id,omitempty"`
	PaidAt                *time.Time          `json:"paid_at,omitempty"`
	OrganizerAmount       decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"organizer_amount"`
	PlatformCommission    decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"platform_commission"`
	StripeFee             decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"stripe_fee"`

	Event *PublicEvent `gorm:"foreignKey:EventID" json:"event,omitempty"`

	types.Timestamps
}

func (p *TicketPurchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Confirmed reports whether the purchase already went through the success
// transition.
func (p *TicketPurchase) Confirmed() bool {
	return p.PaymentStatus == types.PAYMENT_COMPLETED
}

func (p *TicketPurchase) ToAPIResponse() types.APIResponseTicketPurchase {
	res := types.APIResponseTicketPurchase{
		ID:            p.ID.String(),
		EventID:       p.EventID.String(),
		TierName:      p.TierName,
		Quantity:      p.Quantity,
		PaymentStatus: p.PaymentStatus,
		TicketStatus:  p.TicketStatus,
		PaidAt:        p.PaidAt,
	}
	if p.Event != nil {
		res.EventTitle = p.Event.Title
	}
	return res
}

// ToNotification flattens a purchase loaded with its event and organizer into
// the ticket email payload.
func (p *TicketPurchase) ToNotification() types.TicketNotification {
	n := types.TicketNotification{
		PurchaseID:         p.ID.String(),
		BuyerName:          p.BuyerName,
		BuyerEmail:         p.BuyerEmail,
		BuyerPhone:         p.BuyerPhone,
		TierName:           p.TierName,
		Quantity:           p.Quantity,
		FinalAmount:        p.FinalAmount,
		PlatformCommission: p.PlatformCommission.Decimal,
		StripeFee:          p.StripeFee.Decimal,
		OrganizerAmount:    p.OrganizerAmount.Decimal,
		EventID:            p.EventID.String(),
	}
	if p.Event != nil {
		n.EventTitle = p.Event.Title
		n.EventDate = p.Event.EventDate
		n.Venue = p.Event.Venue
		n.MainImage = p.Event.MainImage
		if p.Event.Organizer != nil {
			n.OrganizerName = p.Event.Organizer.CompanyName
			n.OrganizerEmail = p.Event.Organizer.Email
		}
	}
	return n
}

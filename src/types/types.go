package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "pending"
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_CANCELLED PaymentStatus = "cancelled"
)

type TicketStatus string

const (
	TICKET_PENDING   TicketStatus = "pending"
	TICKET_VALID     TicketStatus = "valid"
	TICKET_USED      TicketStatus = "used"
	TICKET_CANCELLED TicketStatus = "cancelled"
)

type OrderStatus string

const (
	ORDER_PENDING OrderStatus = "pending"
	ORDER_PAID    OrderStatus = "paid"
)

// Subscription statuses are mirrored from Stripe, so the set is open. These
// are the values the reconciliation handlers write themselves.
const (
	SUBSCRIPTION_ACTIVE    = "active"
	SUBSCRIPTION_PAST_DUE  = "past_due"
	SUBSCRIPTION_CANCELLED = "cancelled"
)

type PaymentType string

const (
	PaymentTypeTicket       PaymentType = "ticket"
	PaymentTypeProduct      PaymentType = "product"
	PaymentTypeSubscription PaymentType = "subscription"
	PaymentTypeUnknown      PaymentType = "unknown"
)

type NotificationJobStatus string

const (
	NOTIFICATION_PENDING NotificationJobStatus = "pending"
	NOTIFICATION_SENT    NotificationJobStatus = "sent"
	NOTIFICATION_FAILED  NotificationJobStatus = "failed"
)

// TicketNotification is the payload handed to the ticket email function once
// a purchase has been confirmed.
type TicketNotification struct {
	PurchaseID         string          `json:"ticketId"`
	BuyerName          string          `json:"buyerName"`
	BuyerEmail         string          `json:"buyerEmail"`
	BuyerPhone         string          `json:"buyerPhone,omitempty"`
	TierName           string          `json:"ticketType"`
	Quantity           int             `json:"quantity"`
	FinalAmount        decimal.Decimal `json:"amount"`
	PlatformCommission decimal.Decimal `json:"commission"`
	StripeFee          decimal.Decimal `json:"stripeFee"`
	OrganizerAmount    decimal.Decimal `json:"organizerAmount"`
	EventID            string          `json:"eventId"`
	EventTitle         string          `json:"eventTitle"`
	EventDate          time.Time       `json:"eventDate"`
	Venue              string          `json:"venue"`
	MainImage          string          `json:"eventImage,omitempty"`
	OrganizerName      string          `json:"organizerName"`
	OrganizerEmail     string          `json:"organizerEmail"`
	QRCodeURL          string          `json:"qrCodeUrl,omitempty"`
}

type Claims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type CheckoutSessionParams struct {
	ID string `uri:"id" binding:"required,startswith=cs_"`
}

type APIResponseTicketPurchase struct {
	ID            string        `json:"id"`
	EventID       string        `json:"event_id"`
	TierName      string        `json:"tier_name,omitempty"`
	Quantity      int           `json:"quantity"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TicketStatus  TicketStatus  `json:"ticket_status"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	EventTitle    string        `json:"event_title,omitempty"`
}

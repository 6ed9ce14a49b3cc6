package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

type PublicEvent struct {
	ID           uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	Title        string    `json:"title,omitempty"`
	OrganizerID  uuid.UUID `gorm:"type:uuid;index" json:"organizer_id"`
	TicketsSold  int       `gorm:"default:0" json:"tickets_sold"`
	TotalTickets int       `json:"total_tickets"`
	EventDate    time.Time `json:"event_date,omitempty"`
	Venue        string    `json:"venue,omitempty"`
	MainImage    string    `json:"main_image,omitempty"`

	Organizer *EventOrganizer `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`

	types.Timestamps
}

func (e *PublicEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

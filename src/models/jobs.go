package models

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

// NotificationJob keeps a ticket email that the dispatch queue could not
// deliver so the retry sweep can pick it up later.
type NotificationJob struct {
	ID            uuid.UUID                   `gorm:"primarykey;type:uuid" json:"id"`
	PurchaseID    string                      `gorm:"index" json:"purchase_id"`
	Payload       types.JSONB                 `gorm:"type:jsonb" json:"-"`
	Attempts      int                         `gorm:"default:0" json:"attempts"`
	LastError     string                      `json:"last_error,omitempty"`
	Status        types.NotificationJobStatus `gorm:"default:'pending';index" json:"status"`
	NextAttemptAt time.Time                   `gorm:"index" json:"next_attempt_at"`

	types.Timestamps
}

func (j *NotificationJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Notification decodes the stored payload back into the email payload.
func (j *NotificationJob) Notification() (types.TicketNotification, error) {
	var n types.TicketNotification
	b, err := json.Marshal(j.Payload)
	if err != nil {
		return n, err
	}
	err = json.Unmarshal(b, &n)
	return n, err
}

func CreateNotificationJob(db *gorm.DB, n types.TicketNotification, cause error, retryAt time.Time) (*NotificationJob, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	var payload types.JSONB
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, err
	}
	job := &NotificationJob{
		PurchaseID:    n.PurchaseID,
		Payload:       payload,
		Status:        types.NOTIFICATION_PENDING,
		NextAttemptAt: retryAt,
	}
	if cause != nil {
		job.Attempts = 1
		job.LastError = cause.Error()
	}
	if err := db.Create(job).Error; err != nil {
		log.Printf("Could not persist notification job for purchase %s: %s\n", n.PurchaseID, err.Error())
		return nil, err
	}
	return job, nil
}

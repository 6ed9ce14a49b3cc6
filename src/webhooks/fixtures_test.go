package webhooks

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []types.TicketNotification
}

func (n *recordingNotifier) Notify(tn types.TicketNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, tn)
}

func (n *recordingNotifier) Sent() []types.TicketNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]types.TicketNotification(nil), n.sent...)
}

type memoryLedger struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{seen: map[string]bool{}}
}

func (l *memoryLedger) Seen(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[id], nil
}

func (l *memoryLedger) MarkProcessed(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[id] = true
	return nil
}

type fixedPeriods struct {
	start, end time.Time
	err        error
}

func (p fixedPeriods) SubscriptionPeriod(context.Context, string) (time.Time, time.Time, error) {
	return p.start, p.end, p.err
}

func newEvent(t testing.TB, id string, typ stripe.EventType, object any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return stripe.Event{
		ID:   id,
		Type: typ,
		Data: &stripe.EventData{Raw: raw},
	}
}

func checkoutCompleted(t testing.TB, id string, metadata map[string]string) stripe.Event {
	return checkoutEvent(t, id, stripe.EventTypeCheckoutSessionCompleted, "cs_test_"+id, "paid", metadata)
}

func checkoutEvent(t testing.TB, id string, typ stripe.EventType, sessionID string, paymentStatus string, metadata map[string]string) stripe.Event {
	return newEvent(t, id, typ, map[string]any{
		"id":             sessionID,
		"object":         "checkout.session",
		"payment_intent": "pi_test_" + id,
		"payment_status": paymentStatus,
		"metadata":       metadata,
	})
}

type marketplace struct {
	Organizer models.EventOrganizer
	Event     models.PublicEvent
	Purchase  models.TicketPurchase
}

// seedMarketplace creates organizer O1 with 120.00 pending, event E1 with 5
// tickets sold and a pending purchase T1 of 2 tickets worth 18.00 to O1.
func seedMarketplace(t testing.TB, db *gorm.DB) marketplace {
	t.Helper()
	m := marketplace{}
	m.Organizer = models.EventOrganizer{
		CompanyName:     "Orientale Musique",
		Email:           "booking@orientale-musique.test",
		PendingEarnings: decimal.RequireFromString("120.00"),
	}
	require.NoError(t, db.Create(&m.Organizer).Error)

	m.Event = models.PublicEvent{
		OrganizerID:  m.Organizer.ID,
		Title:        "Nuit du Oud",
		Venue:        "Salle Pleyel",
		EventDate:    fixedNow.Add(240 * time.Hour),
		TicketsSold:  5,
		TotalTickets: 300,
	}
	require.NoError(t, db.Create(&m.Event).Error)

	m.Purchase = newPurchase(t, db, m.Event.ID, 2, "18.00")
	return m
}

func newPurchase(t testing.TB, db *gorm.DB, eventID uuid.UUID, qty int, organizerAmount string) models.TicketPurchase {
	t.Helper()
	p := models.TicketPurchase{
		EventID:     eventID,
		TierName:    "Standard",
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString("10.00"),
		FinalAmount: decimal.NewFromInt(int64(qty * 10)),
		BuyerName:   "Samira B.",
		BuyerEmail:  "samira@example.test",
	}
	if organizerAmount != "" {
		p.OrganizerAmount = decimal.NewNullDecimal(decimal.RequireFromString(organizerAmount))
		p.PlatformCommission = decimal.NewNullDecimal(decimal.RequireFromString("1.20"))
		p.StripeFee = decimal.NewNullDecimal(decimal.RequireFromString("0.80"))
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func reload[T any](t testing.TB, db *gorm.DB, id uuid.UUID) T {
	t.Helper()
	var row T
	require.NoError(t, db.Where("id = ?", id).First(&row).Error)
	return row
}

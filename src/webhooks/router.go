package webhooks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/wasnasmay/altess-final-sub004/src/models/scopes"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

// Notifier receives ticket emails to send once a purchase is confirmed. It
// must not block.
type Notifier interface {
	Notify(n types.TicketNotification)
}

// Reconciler applies verified Stripe events to the marketplace records.
type Reconciler struct {
	db       *gorm.DB
	notifier Notifier
	ledger   EventLedger
	periods  PeriodSource
	now      func() time.Time
}

type Option func(*Reconciler)

func WithNotifier(n Notifier) Option {
	return func(r *Reconciler) { r.notifier = n }
}

func WithLedger(l EventLedger) Option {
	return func(r *Reconciler) { r.ledger = l }
}

func WithPeriodSource(p PeriodSource) Option {
	return func(r *Reconciler) { r.periods = p }
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func NewReconciler(db *gorm.DB, opts ...Option) *Reconciler {
	r := &Reconciler{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle routes one verified event to its handler. A nil return means the
// event can be acknowledged, including events that were ignored or that can
// never succeed. A non-nil return asks Stripe to redeliver.
func (r *Reconciler) Handle(ctx context.Context, evt stripe.Event) (err error) {
	eventType := string(evt.Type)
	start := time.Now()
	defer func() {
		eventDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	decoded, err := Decode(evt)
	if err != nil {
		log.Printf("[StripeEvent] %s %s rejected: %s\n", eventType, evt.ID, err.Error())
		eventsTotal.WithLabelValues(eventType, outcomeRejected).Inc()
		return nil
	}
	if _, ok := decoded.(UnknownEvent); ok {
		log.Printf("[StripeEvent] %s %s ignored\n", eventType, evt.ID)
		eventsTotal.WithLabelValues(eventType, outcomeIgnored).Inc()
		return nil
	}
	log.Printf("[StripeEvent] %s %s\n", eventType, evt.ID)

	if r.ledger != nil && evt.ID != "" {
		seen, lerr := r.ledger.Seen(ctx, evt.ID)
		if lerr != nil {
			log.Printf("[StripeEvent] Could not read event ledger for %s: %s\n", evt.ID, lerr.Error())
		} else if seen {
			log.Printf("[StripeEvent] %s already processed\n", evt.ID)
			eventsTotal.WithLabelValues(eventType, outcomeDuplicate).Inc()
			return nil
		}
	}

	err = r.route(ctx, decoded)
	switch {
	case err == nil:
		eventsTotal.WithLabelValues(eventType, outcomeProcessed).Inc()
	case IsTerminal(err):
		log.Printf("[StripeEvent] %s %s cannot be processed: %s\n", eventType, evt.ID, err.Error())
		eventsTotal.WithLabelValues(eventType, outcomeRejected).Inc()
		err = nil
	default:
		log.Printf("[StripeEvent] %s %s failed, waiting for redelivery: %s\n", eventType, evt.ID, err.Error())
		eventsTotal.WithLabelValues(eventType, outcomeRetry).Inc()
		return err
	}

	if r.ledger != nil && evt.ID != "" {
		if lerr := r.ledger.MarkProcessed(ctx, evt.ID); lerr != nil {
			log.Printf("[StripeEvent] Could not record %s in event ledger: %s\n", evt.ID, lerr.Error())
		}
	}
	return nil
}

func (r *Reconciler) route(ctx context.Context, decoded Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic on %s: %v", decoded.EventType(), p)
		}
	}()

	switch e := decoded.(type) {
	case CheckoutCompleted:
		return r.handleCheckoutCompleted(ctx, e.Session)
	case CheckoutFailed:
		return r.handleCheckoutFailed(ctx, e.Session)
	case InvoicePaid:
		return r.markInvoicePaid(ctx, e.Invoice)
	case InvoicePaymentFailed:
		return r.markInvoiceFailed(ctx, e.Invoice)
	case SubscriptionUpdated:
		return r.syncSubscription(ctx, e.Subscription)
	case SubscriptionDeleted:
		return r.cancelSubscription(ctx, e.Subscription)
	case PaymentIntentFailed:
		return r.handlePaymentFailed(ctx, e.PaymentIntent)
	}
	return fmt.Errorf("%w: no handler for %T", ErrInvalidPayload, decoded)
}

func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, cs CheckoutSession) error {
	log.Printf("[CheckoutSession] ID: %s %s\n", cs.ID, cs.PaymentStatus)
	switch ResolvePaymentType(cs) {
	case types.PaymentTypeTicket:
		if awaitingPayment(cs) {
			return r.holdTicketPurchase(ctx, cs)
		}
		return r.confirmTicketPurchase(ctx, cs)
	case types.PaymentTypeProduct:
		if awaitingPayment(cs) {
			log.Printf("[CheckoutSession] %s awaiting delayed payment, order stays pending\n", cs.ID)
			return nil
		}
		return r.markOrderPaid(ctx, cs)
	case types.PaymentTypeSubscription:
		return r.linkSubscription(ctx, cs)
	}
	log.Printf("[CheckoutSession] %s has unknown payment_type %q, nothing to reconcile\n", cs.ID, cs.Metadata["payment_type"])
	return nil
}

func (r *Reconciler) handleCheckoutFailed(ctx context.Context, cs CheckoutSession) error {
	if ResolvePaymentType(cs) != types.PaymentTypeTicket {
		return nil
	}
	id, err := ticketReferenceFrom(cs.Metadata, cs.ID)
	if err != nil {
		return err
	}
	return r.cancelTicketPurchase(ctx, "", scopes.WithID(id))
}

func (r *Reconciler) notify(n types.TicketNotification) {
	if r.notifier == nil {
		log.Printf("[notify] No notifier configured, skipping ticket email for %s\n", n.PurchaseID)
		return
	}
	r.notifier.Notify(n)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
)

// Event is the closed set of Stripe notifications this service reacts to.
// Anything else decodes to UnknownEvent.
type Event interface {
	EventID() string
	EventType() stripe.EventType
	isEvent()
}

type envelope struct {
	ID   string
	Type stripe.EventType
}

func (e envelope) EventID() string             { return e.ID }
func (e envelope) EventType() stripe.EventType { return e.Type }
func (envelope) isEvent()                      {}

// CheckoutCompleted covers both synchronous and delayed (async) successful
// checkouts.
type CheckoutCompleted struct {
	envelope
	Session CheckoutSession
}

// CheckoutFailed covers expired sessions and failed delayed payments.
type CheckoutFailed struct {
	envelope
	Session CheckoutSession
}

type InvoicePaid struct {
	envelope
	Invoice Invoice
}

type InvoicePaymentFailed struct {
	envelope
	Invoice Invoice
}

type SubscriptionUpdated struct {
	envelope
	Subscription SubscriptionObject
}

type SubscriptionDeleted struct {
	envelope
	Subscription SubscriptionObject
}

type PaymentIntentFailed struct {
	envelope
	PaymentIntent PaymentIntent
}

type UnknownEvent struct {
	envelope
}

// ObjectID is a Stripe reference that may arrive either as a bare id or as an
// expanded object.
type ObjectID string

func (o *ObjectID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*o = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = ObjectID(s)
	case b[0] == '{':
		*o = ObjectID(gjson.GetBytes(b, "id").String())
	default:
		return fmt.Errorf("unexpected reference %s", string(b))
	}
	return nil
}

func (o ObjectID) String() string {
	return string(o)
}

type CheckoutSession struct {
	ID            string            `json:"id"`
	PaymentIntent ObjectID          `json:"payment_intent"`
	Subscription  ObjectID          `json:"subscription"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

type Invoice struct {
	ID           string   `json:"id"`
	Subscription ObjectID `json:"subscription"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription ObjectID `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// SubscriptionID returns the subscription the invoice bills, reading both the
// legacy top-level field and the newer parent details.
func (i Invoice) SubscriptionID() string {
	if i.Subscription != "" {
		return i.Subscription.String()
	}
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return i.Parent.SubscriptionDetails.Subscription.String()
	}
	return ""
}

type subscriptionPeriod struct {
	CurrentPeriodStart *int64 `json:"current_period_start"`
	CurrentPeriodEnd   *int64 `json:"current_period_end"`
}

type SubscriptionObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
	subscriptionPeriod
	Items struct {
		Data []subscriptionPeriod `json:"data"`
	} `json:"items"`
}

// Period returns the billing period Stripe supplied, if any. Each bound is nil
// when absent.
func (s SubscriptionObject) Period() (start *time.Time, end *time.Time) {
	p := s.subscriptionPeriod
	if p.CurrentPeriodStart == nil && p.CurrentPeriodEnd == nil && len(s.Items.Data) > 0 {
		p = s.Items.Data[0]
	}
	if p.CurrentPeriodStart != nil {
		t := time.Unix(*p.CurrentPeriodStart, 0).UTC()
		start = &t
	}
	if p.CurrentPeriodEnd != nil {
		t := time.Unix(*p.CurrentPeriodEnd, 0).UTC()
		end = &t
	}
	return start, end
}

type PaymentIntent struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// Decode maps a verified Stripe event onto the closed Event union.
func Decode(evt stripe.Event) (Event, error) {
	env := envelope{ID: evt.ID, Type: evt.Type}
	switch evt.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		e := CheckoutCompleted{envelope: env}
		err := decodeObject(evt, &e.Session)
		return e, err
	case stripe.EventTypeCheckoutSessionExpired,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		e := CheckoutFailed{envelope: env}
		err := decodeObject(evt, &e.Session)
		return e, err
	case stripe.EventTypeInvoicePaid,
		stripe.EventTypeInvoicePaymentSucceeded:
		e := InvoicePaid{envelope: env}
		err := decodeObject(evt, &e.Invoice)
		return e, err
	case stripe.EventTypeInvoicePaymentFailed:
		e := InvoicePaymentFailed{envelope: env}
		err := decodeObject(evt, &e.Invoice)
		return e, err
	case stripe.EventTypeCustomerSubscriptionUpdated:
		e := SubscriptionUpdated{envelope: env}
		err := decodeObject(evt, &e.Subscription)
		return e, err
	case stripe.EventTypeCustomerSubscriptionDeleted:
		e := SubscriptionDeleted{envelope: env}
		err := decodeObject(evt, &e.Subscription)
		return e, err
	case stripe.EventTypePaymentIntentPaymentFailed:
		e := PaymentIntentFailed{envelope: env}
		err := decodeObject(evt, &e.PaymentIntent)
		return e, err
	}
	return UnknownEvent{envelope: env}, nil
}

func decodeObject(evt stripe.Event, v any) error {
	if evt.Data == nil || len(evt.Data.Raw) == 0 {
		return fmt.Errorf("%w: %s %s has no data object", ErrInvalidPayload, evt.Type, evt.ID)
	}
	if err := json.Unmarshal(evt.Data.Raw, v); err != nil {
		return fmt.Errorf("%w: %s %s: %s", ErrInvalidPayload, evt.Type, evt.ID, err.Error())
	}
	return nil
}

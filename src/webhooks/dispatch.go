package webhooks

import (
	"log"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

// ResolvePaymentType reads the payment_type tag the checkout flow stamps on
// every session. Sessions created before the tag existed only carry a
// ticket_id, so an untagged session with a ticket_id is still treated as a
// ticket purchase. Anything else is PaymentTypeUnknown.
func ResolvePaymentType(cs CheckoutSession) types.PaymentType {
	tag := strings.ToLower(strings.TrimSpace(cs.Metadata["payment_type"]))
	switch types.PaymentType(tag) {
	case types.PaymentTypeTicket:
		return types.PaymentTypeTicket
	case types.PaymentTypeProduct:
		return types.PaymentTypeProduct
	case types.PaymentTypeSubscription:
		return types.PaymentTypeSubscription
	}
	if tag == "" && cs.Metadata["ticket_id"] != "" {
		log.Printf("[CheckoutSession] %s has no payment_type, using legacy ticket flow\n", cs.ID)
		return types.PaymentTypeTicket
	}
	return types.PaymentTypeUnknown
}

// awaitingPayment reports a completed checkout paid with a delayed method
// (SEPA debit, bank transfer) that has not settled yet. Stripe follows up
// with checkout.session.async_payment_succeeded or async_payment_failed.
func awaitingPayment(cs CheckoutSession) bool {
	return cs.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusUnpaid)
}

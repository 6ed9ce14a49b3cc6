package models

// All lists every table owned by this service, in migration order.
func All() []any {
	return []any{
		&EventOrganizer{},
		&PublicEvent{},
		&TicketPurchase{},
		&Order{},
		&Subscription{},
		&NotificationJob{},
	}
}

package models

// All lists every persisted model; tests use it for sqlite AutoMigrate.
func All() []any {
	return []any{
		&Offer{},
		&Order{},
		&OrderLineItem{},
		&Notification{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}

package entity

import "time"

// Billing event types published after successful mutations
const (
	EventCustomerCreated              = "customer.created"
	EventCustomerEmailUpdated         = "customer.email_updated"
	EventCustomerDefaultPaymentMethod = "customer.default_payment_method_updated"
	EventSubscriptionCanceled         = "subscription.canceled"
)

// BillingEvent is the envelope published on the events channel
type BillingEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	UserID     string         `json:"user_id,omitempty"`
	CustomerID string         `json:"customer_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

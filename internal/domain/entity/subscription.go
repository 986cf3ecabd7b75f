package entity

import "time"

type Subscription struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id"`
	Status             string             `json:"status"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CanceledAt         *time.Time         `json:"canceled_at,omitempty"`
	Items              []SubscriptionItem `json:"items"`
	CreatedAt          time.Time          `json:"created_at"`
}

// SubscriptionItem carries the price and, when expanded, the product.
type SubscriptionItem struct {
	ID            string `json:"id"`
	PriceID       string `json:"price_id"`
	ProductID     string `json:"product_id,omitempty"`
	ProductName   string `json:"product_name,omitempty"`
	Quantity      int64  `json:"quantity"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval,omitempty"`
	IntervalCount int64  `json:"interval_count,omitempty"`
}

// Cancellation is what the portal reports back after cancelling.
type Cancellation struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
	Status         string `json:"status"`
}

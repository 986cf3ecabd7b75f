package entity

import "time"

// CustomerMapping is the persisted link between a user and a provider customer.
type CustomerMapping struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"user_id"`
	ProviderCustomerID string    `json:"provider_customer_id"`
	Email              string    `json:"email"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

package model

import (
	"time"
)

// CustomerMapping links a host user to a billing provider customer
type CustomerMapping struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             string    `gorm:"column:user_id;uniqueIndex;not null;size:100" json:"user_id"`
	ProviderCustomerID string    `gorm:"column:provider_customer_id;not null;size:100;index" json:"provider_customer_id"`
	Email              string    `gorm:"size:255" json:"email"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (CustomerMapping) TableName() string {
	return "customer_mappings"
}

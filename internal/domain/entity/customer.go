package entity

import "time"

// CustomerRecord is the billing provider's customer linked to a user.
type CustomerRecord struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`

	// DefaultPaymentMethodID comes from invoice_settings.default_payment_method.
	DefaultPaymentMethodID string `json:"default_payment_method_id,omitempty"`
	// DefaultPaymentMethod is only populated when the field was expanded.
	DefaultPaymentMethod *PaymentMethod `json:"default_payment_method,omitempty"`

	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// LookupStatus tags the outcome of a provider customer lookup.
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
	LookupDeleted
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupDeleted:
		return "deleted"
	default:
		return "not_found"
	}
}

// LookupResult is Found(record), NotFound or Deleted(record).
type LookupResult struct {
	Status   LookupStatus
	Customer *CustomerRecord
}

func Found(c *CustomerRecord) LookupResult {
	return LookupResult{Status: LookupFound, Customer: c}
}

func Deleted(c *CustomerRecord) LookupResult {
	return LookupResult{Status: LookupDeleted, Customer: c}
}

func NotFound() LookupResult {
	return LookupResult{Status: LookupNotFound}
}

// Usable reports whether the lookup produced a live customer.
func (r LookupResult) Usable() bool {
	return r.Status == LookupFound && r.Customer != nil
}

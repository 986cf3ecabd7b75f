package entity

import "time"

const PaymentMethodTypeCard = "card"

type PaymentMethod struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Brand     string    `json:"brand,omitempty"`
	Last4     string    `json:"last4,omitempty"`
	ExpMonth  int64     `json:"exp_month,omitempty"`
	ExpYear   int64     `json:"exp_year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Invoice amounts are in the currency's smallest unit.
type Invoice struct {
	ID               string    `json:"id"`
	Number           string    `json:"number,omitempty"`
	Status           string    `json:"status"`
	Currency         string    `json:"currency"`
	AmountDue        int64     `json:"amount_due"`
	AmountPaid       int64     `json:"amount_paid"`
	Total            int64     `json:"total"`
	HostedInvoiceURL string    `json:"hosted_invoice_url,omitempty"`
	InvoicePDF       string    `json:"invoice_pdf,omitempty"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
	CreatedAt        time.Time `json:"created_at"`
}

type SetupIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

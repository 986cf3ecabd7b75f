package http

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	"github.com/nexusmerchants/orderforms-stripe/internal/usecase"
)

// Currencies Stripe bills in whole units
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// FormatAmount renders an amount in the currency's smallest unit as a decimal string,
// e.g. 1999 usd -> "19.99", 5000 krw -> "5000".
func FormatAmount(amount int64, currency string) string {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return decimal.NewFromInt(amount).String()
	}
	return decimal.New(amount, -2).StringFixed(2)
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId" validate:"max=255"`
}

type SetDefaultPaymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"max=255"`
}

type EmailChangedRequest struct {
	UserID   string `param:"id" validate:"required,max=64"`
	OldEmail string `json:"old_email" validate:"max=320"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type CustomerResponse struct {
	ID                   string                 `json:"id"`
	Email                string                 `json:"email"`
	Name                 string                 `json:"name,omitempty"`
	DefaultPaymentMethod *PaymentMethodResponse `json:"default_payment_method,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
}

type PaymentMethodResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Brand     string `json:"brand,omitempty"`
	Last4     string `json:"last4,omitempty"`
	ExpMonth  int64  `json:"exp_month,omitempty"`
	ExpYear   int64  `json:"exp_year,omitempty"`
	IsDefault bool   `json:"is_default"`
}

type InvoiceResponse struct {
	ID               string    `json:"id"`
	Number           string    `json:"number,omitempty"`
	Status           string    `json:"status"`
	Currency         string    `json:"currency"`
	AmountDue        string    `json:"amount_due"`
	AmountPaid       string    `json:"amount_paid"`
	Total            string    `json:"total"`
	HostedInvoiceURL string    `json:"hosted_invoice_url,omitempty"`
	InvoicePDF       string    `json:"invoice_pdf,omitempty"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
	CreatedAt        time.Time `json:"created_at"`
}

type SubscriptionItemResponse struct {
	ID            string `json:"id"`
	PriceID       string `json:"price_id"`
	ProductName   string `json:"product_name,omitempty"`
	Quantity      int64  `json:"quantity"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval,omitempty"`
	IntervalCount int64  `json:"interval_count,omitempty"`
}

type SubscriptionResponse struct {
	ID                 string                     `json:"id"`
	Status             string                     `json:"status"`
	CurrentPeriodStart time.Time                  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time                  `json:"current_period_end"`
	CancelAtPeriodEnd  bool                       `json:"cancel_at_period_end"`
	CanceledAt         *time.Time                 `json:"canceled_at,omitempty"`
	Items              []SubscriptionItemResponse `json:"items"`
}

type OverviewResponse struct {
	Customer      CustomerResponse        `json:"customer"`
	Cards         []PaymentMethodResponse `json:"cards"`
	Invoices      []InvoiceResponse       `json:"invoices"`
	Subscriptions []SubscriptionResponse  `json:"subscriptions"`
}

type PurgeResponse struct {
	Keys []string `json:"keys"`
}

func toCustomerResponse(c *entity.CustomerRecord) CustomerResponse {
	resp := CustomerResponse{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
	if c.DefaultPaymentMethod != nil {
		pm := toPaymentMethodResponse(c.DefaultPaymentMethod, c.DefaultPaymentMethodID)
		resp.DefaultPaymentMethod = &pm
	}
	return resp
}

func toPaymentMethodResponse(pm *entity.PaymentMethod, defaultID string) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:        pm.ID,
		Type:      pm.Type,
		Brand:     pm.Brand,
		Last4:     pm.Last4,
		ExpMonth:  pm.ExpMonth,
		ExpYear:   pm.ExpYear,
		IsDefault: defaultID != "" && pm.ID == defaultID,
	}
}

func toCardsResponse(cards []*entity.PaymentMethod, defaultID string) []PaymentMethodResponse {
	out := make([]PaymentMethodResponse, 0, len(cards))
	for _, pm := range cards {
		out = append(out, toPaymentMethodResponse(pm, defaultID))
	}
	return out
}

func toInvoicesResponse(invoices []*entity.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, InvoiceResponse{
			ID:               inv.ID,
			Number:           inv.Number,
			Status:           inv.Status,
			Currency:         inv.Currency,
			AmountDue:        FormatAmount(inv.AmountDue, inv.Currency),
			AmountPaid:       FormatAmount(inv.AmountPaid, inv.Currency),
			Total:            FormatAmount(inv.Total, inv.Currency),
			HostedInvoiceURL: inv.HostedInvoiceURL,
			InvoicePDF:       inv.InvoicePDF,
			PeriodStart:      inv.PeriodStart,
			PeriodEnd:        inv.PeriodEnd,
			CreatedAt:        inv.CreatedAt,
		})
	}
	return out
}

func toSubscriptionsResponse(subs []*entity.Subscription) []SubscriptionResponse {
	out := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		items := make([]SubscriptionItemResponse, 0, len(sub.Items))
		for _, item := range sub.Items {
			items = append(items, SubscriptionItemResponse{
				ID:            item.ID,
				PriceID:       item.PriceID,
				ProductName:   item.ProductName,
				Quantity:      item.Quantity,
				Amount:        FormatAmount(item.Amount, item.Currency),
				Currency:      item.Currency,
				Interval:      item.Interval,
				IntervalCount: item.IntervalCount,
			})
		}
		out = append(out, SubscriptionResponse{
			ID:                 sub.ID,
			Status:             sub.Status,
			CurrentPeriodStart: sub.CurrentPeriodStart,
			CurrentPeriodEnd:   sub.CurrentPeriodEnd,
			CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
			CanceledAt:         sub.CanceledAt,
			Items:              items,
		})
	}
	return out
}

func toOverviewResponse(o *usecase.PortalOverview) OverviewResponse {
	return OverviewResponse{
		Customer:      toCustomerResponse(o.Customer),
		Cards:         toCardsResponse(o.Cards, o.Customer.DefaultPaymentMethodID),
		Invoices:      toInvoicesResponse(o.Invoices),
		Subscriptions: toSubscriptionsResponse(o.Subscriptions),
	}
}

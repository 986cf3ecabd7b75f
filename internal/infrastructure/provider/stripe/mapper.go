package stripe

import (
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
)

func unixTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

func toCustomerRecord(c *stripe.Customer) *entity.CustomerRecord {
	rec := &entity.CustomerRecord{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		Deleted:   c.Deleted,
		Metadata:  c.Metadata,
		CreatedAt: unixTime(c.Created),
	}

	if c.InvoiceSettings != nil && c.InvoiceSettings.DefaultPaymentMethod != nil {
		pm := c.InvoiceSettings.DefaultPaymentMethod
		rec.DefaultPaymentMethodID = pm.ID
		// an unexpanded reference only carries the id
		if pm.Type != "" {
			rec.DefaultPaymentMethod = toPaymentMethod(pm)
		}
	}
	return rec
}

func toPaymentMethod(pm *stripe.PaymentMethod) *entity.PaymentMethod {
	out := &entity.PaymentMethod{
		ID:        pm.ID,
		Type:      string(pm.Type),
		CreatedAt: unixTime(pm.Created),
	}
	if pm.Card != nil {
		out.Brand = string(pm.Card.Brand)
		out.Last4 = pm.Card.Last4
		out.ExpMonth = pm.Card.ExpMonth
		out.ExpYear = pm.Card.ExpYear
	}
	return out
}

func toInvoice(in *stripe.Invoice) *entity.Invoice {
	return &entity.Invoice{
		ID:               in.ID,
		Number:           in.Number,
		Status:           string(in.Status),
		Currency:         string(in.Currency),
		AmountDue:        in.AmountDue,
		AmountPaid:       in.AmountPaid,
		Total:            in.Total,
		HostedInvoiceURL: in.HostedInvoiceURL,
		InvoicePDF:       in.InvoicePDF,
		PeriodStart:      unixTime(in.PeriodStart),
		PeriodEnd:        unixTime(in.PeriodEnd),
		CreatedAt:        unixTime(in.Created),
	}
}

func toSubscription(s *stripe.Subscription) *entity.Subscription {
	out := &entity.Subscription{
		ID:                 s.ID,
		Status:             string(s.Status),
		CurrentPeriodStart: unixTime(s.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(s.CurrentPeriodEnd),
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CreatedAt:          unixTime(s.Created),
		Items:              []entity.SubscriptionItem{},
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.CanceledAt != 0 {
		canceledAt := unixTime(s.CanceledAt)
		out.CanceledAt = &canceledAt
	}

	if s.Items != nil {
		for _, item := range s.Items.Data {
			out.Items = append(out.Items, toSubscriptionItem(item))
		}
	}
	return out
}

func toSubscriptionItem(item *stripe.SubscriptionItem) entity.SubscriptionItem {
	out := entity.SubscriptionItem{
		ID:       item.ID,
		Quantity: item.Quantity,
	}
	if item.Price == nil {
		return out
	}

	out.PriceID = item.Price.ID
	out.Amount = item.Price.UnitAmount
	out.Currency = string(item.Price.Currency)
	if item.Price.Recurring != nil {
		out.Interval = string(item.Price.Recurring.Interval)
		out.IntervalCount = item.Price.Recurring.IntervalCount
	}
	if item.Price.Product != nil {
		out.ProductID = item.Price.Product.ID
		out.ProductName = item.Price.Product.Name
	}
	return out
}

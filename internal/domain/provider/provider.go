package provider

import (
	"context"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
)

// BillingGateway is the authenticated client to the billing provider.
// Every method fails with a PROVIDER error carrying the provider's message.
type BillingGateway interface {
	// GetCustomer never fails for an unknown or invalid id; it returns NotFound instead.
	GetCustomer(ctx context.Context, id string, expand []string) (entity.LookupResult, error)
	FindCustomersByEmail(ctx context.Context, email string, limit int64) ([]*entity.CustomerRecord, error)
	CreateCustomer(ctx context.Context, email, userID string) (*entity.CustomerRecord, error)
	UpdateCustomerEmail(ctx context.Context, id, email string) (*entity.CustomerRecord, error)
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*entity.CustomerRecord, error)

	CreateSetupIntent(ctx context.Context, customerID string) (*entity.SetupIntent, error)
	ListPaymentMethods(ctx context.Context, customerID, methodType string) ([]*entity.PaymentMethod, error)
	ListInvoices(ctx context.Context, customerID string) ([]*entity.Invoice, error)

	ListSubscriptions(ctx context.Context, customerID string) ([]*entity.Subscription, error)
	GetSubscription(ctx context.Context, id string, expand []string) (*entity.Subscription, error)
	CancelSubscription(ctx context.Context, id string) (*entity.Subscription, error)
}

// ProviderType names a billing provider implementation
type ProviderType string

const ProviderTypeStripe ProviderType = "stripe"

// Expansions used by the portal
const (
	ExpandDefaultPaymentMethod = "invoice_settings.default_payment_method"
	ExpandItemProducts         = "items.data.price.product"
)

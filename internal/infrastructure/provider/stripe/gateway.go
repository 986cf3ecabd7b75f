package stripe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/metrics"
)

// Gateway implements provider.BillingGateway on top of the Stripe API
type Gateway struct {
	api     *client.API
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ provider.BillingGateway = (*Gateway)(nil)

// NewGateway creates a gateway bound to secretKey. A nil backends uses Stripe's defaults.
func NewGateway(secretKey string, backends *stripe.Backends, logger *zap.Logger, m *metrics.Metrics) *Gateway {
	return &Gateway{
		api:     client.New(secretKey, backends),
		logger:  logger,
		metrics: m,
	}
}

// NewBackends builds backends that never retry at the transport level.
// An empty url targets the live API.
func NewBackends(url string, httpClient *http.Client) *stripe.Backends {
	cfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if url != "" {
		cfg.URL = stripe.String(url)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	return &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	}
}

func (g *Gateway) GetCustomer(ctx context.Context, id string, expand []string) (result entity.LookupResult, err error) {
	defer g.track("get_customer", time.Now(), &err)

	params := &stripe.CustomerParams{}
	params.Context = ctx
	for _, e := range expand {
		params.AddExpand(e)
	}

	c, err := g.api.Customers.Get(id, params)
	if err != nil {
		if isResourceMissing(err) {
			g.logger.Debug("Stripe customer not found", zap.String("customer_id", id))
			return entity.NotFound(), nil
		}
		return entity.LookupResult{}, toProviderError(err)
	}

	rec := toCustomerRecord(c)
	if c.Deleted {
		return entity.Deleted(rec), nil
	}
	return entity.Found(rec), nil
}

func (g *Gateway) FindCustomersByEmail(ctx context.Context, email string, limit int64) (records []*entity.CustomerRecord, err error) {
	defer g.track("find_customers_by_email", time.Now(), &err)

	if limit <= 0 {
		limit = 1
	}
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.Single = true

	iter := g.api.Customers.List(params)
	for iter.Next() && int64(len(records)) < limit {
		records = append(records, toCustomerRecord(iter.Customer()))
	}
	if err := iter.Err(); err != nil {
		return nil, toProviderError(err)
	}
	return records, nil
}

func (g *Gateway) CreateCustomer(ctx context.Context, email, userID string) (rec *entity.CustomerRecord, err error) {
	defer g.track("create_customer", time.Now(), &err)

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	c, err := g.api.Customers.New(params)
	if err != nil {
		return nil, toProviderError(err)
	}

	g.logger.Info("Stripe customer created",
		zap.String("customer_id", c.ID),
		zap.String("user_id", userID),
	)
	return toCustomerRecord(c), nil
}

func (g *Gateway) UpdateCustomerEmail(ctx context.Context, id, email string) (rec *entity.CustomerRecord, err error) {
	defer g.track("update_customer_email", time.Now(), &err)

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx

	c, err := g.api.Customers.Update(id, params)
	if err != nil {
		return nil, toProviderError(err)
	}
	return toCustomerRecord(c), nil
}

func (g *Gateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (rec *entity.CustomerRecord, err error) {
	defer g.track("set_default_payment_method", time.Now(), &err)

	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	c, err := g.api.Customers.Update(customerID, params)
	if err != nil {
		return nil, toProviderError(err)
	}
	return toCustomerRecord(c), nil
}

func (g *Gateway) CreateSetupIntent(ctx context.Context, customerID string) (si *entity.SetupIntent, err error) {
	defer g.track("create_setup_intent", time.Now(), &err)

	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{entity.PaymentMethodTypeCard}),
	}
	params.Context = ctx

	intent, err := g.api.SetupIntents.New(params)
	if err != nil {
		return nil, toProviderError(err)
	}
	return &entity.SetupIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

func (g *Gateway) ListPaymentMethods(ctx context.Context, customerID, methodType string) (methods []*entity.PaymentMethod, err error) {
	defer g.track("list_payment_methods", time.Now(), &err)

	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
	}
	if methodType != "" {
		params.Type = stripe.String(methodType)
	}
	params.Context = ctx

	methods = []*entity.PaymentMethod{}
	iter := g.api.PaymentMethods.List(params)
	for iter.Next() {
		methods = append(methods, toPaymentMethod(iter.PaymentMethod()))
	}
	if err := iter.Err(); err != nil {
		return nil, toProviderError(err)
	}
	return methods, nil
}

func (g *Gateway) ListInvoices(ctx context.Context, customerID string) (invoices []*entity.Invoice, err error) {
	defer g.track("list_invoices", time.Now(), &err)

	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	invoices = []*entity.Invoice{}
	iter := g.api.Invoices.List(params)
	for iter.Next() {
		invoices = append(invoices, toInvoice(iter.Invoice()))
	}
	if err := iter.Err(); err != nil {
		return nil, toProviderError(err)
	}
	return invoices, nil
}

func (g *Gateway) ListSubscriptions(ctx context.Context, customerID string) (subs []*entity.Subscription, err error) {
	defer g.track("list_subscriptions", time.Now(), &err)

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	subs = []*entity.Subscription{}
	iter := g.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, toSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, toProviderError(err)
	}
	return subs, nil
}

func (g *Gateway) GetSubscription(ctx context.Context, id string, expand []string) (sub *entity.Subscription, err error) {
	defer g.track("get_subscription", time.Now(), &err)

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	for _, e := range expand {
		params.AddExpand(e)
	}

	s, err := g.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, toProviderError(err)
	}
	return toSubscription(s), nil
}

func (g *Gateway) CancelSubscription(ctx context.Context, id string) (sub *entity.Subscription, err error) {
	defer g.track("cancel_subscription", time.Now(), &err)

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	s, err := g.api.Subscriptions.Cancel(id, params)
	if err != nil {
		return nil, toProviderError(err)
	}

	g.logger.Info("Stripe subscription canceled",
		zap.String("subscription_id", s.ID),
		zap.String("status", string(s.Status)),
	)
	return toSubscription(s), nil
}

func (g *Gateway) track(operation string, start time.Time, err *error) {
	g.metrics.RecordProviderCall(operation, time.Since(start), *err)
	if *err != nil {
		g.logger.Warn("Stripe call failed",
			zap.String("operation", operation),
			zap.Error(*err),
		)
	}
}

// isResourceMissing covers unknown ids as well as malformed ones
func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound
}

func toProviderError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return domainErrors.NewProviderError(stripeErr.Msg, err)
	}
	return domainErrors.NewProviderError("", err)
}

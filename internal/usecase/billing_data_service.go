package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/metrics"
)

// PortalOverview is everything the portal page shows at once
type PortalOverview struct {
	Customer      *entity.CustomerRecord  `json:"customer"`
	Cards         []*entity.PaymentMethod `json:"cards"`
	Invoices      []*entity.Invoice       `json:"invoices"`
	Subscriptions []*entity.Subscription  `json:"subscriptions"`
}

// BillingDataService serves read-through cached billing lists per customer
type BillingDataService struct {
	gateway  provider.BillingGateway
	resolver *CustomerResolver
	cache    *snapshotCache
	logger   *zap.Logger
}

func NewBillingDataService(
	gateway provider.BillingGateway,
	resolver *CustomerResolver,
	store domainCache.Store,
	cfg config.BillingConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BillingDataService {
	return &BillingDataService{
		gateway:  gateway,
		resolver: resolver,
		cache:    newSnapshotCache(store, cfg.CachePrefix, cfg.CacheTTL, m, logger),
		logger:   logger,
	}
}

// GetCards returns the customer's card payment methods
func (s *BillingDataService) GetCards(ctx context.Context, customer *entity.CustomerRecord) ([]*entity.PaymentMethod, error) {
	if s.gateway == nil {
		return nil, domainErrors.ErrGatewayUnavailable
	}

	key := s.cache.keys.Cards(customer.ID)
	if cards, ok := lookup[[]*entity.PaymentMethod](ctx, s.cache, "cards", key); ok {
		return cards, nil
	}

	cards, err := s.gateway.ListPaymentMethods(ctx, customer.ID, entity.PaymentMethodTypeCard)
	if err != nil {
		return nil, err
	}

	s.cache.put(ctx, key, cards)
	return cards, nil
}

// GetInvoices returns every invoice of the customer
func (s *BillingDataService) GetInvoices(ctx context.Context, customer *entity.CustomerRecord) ([]*entity.Invoice, error) {
	if s.gateway == nil {
		return nil, domainErrors.ErrGatewayUnavailable
	}

	key := s.cache.keys.Invoices(customer.ID)
	if invoices, ok := lookup[[]*entity.Invoice](ctx, s.cache, "invoices", key); ok {
		return invoices, nil
	}

	invoices, err := s.gateway.ListInvoices(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	s.cache.put(ctx, key, invoices)
	return invoices, nil
}

// GetSubscriptions lists the customer's subscriptions and re-fetches each one
// with its products expanded.
func (s *BillingDataService) GetSubscriptions(ctx context.Context, customer *entity.CustomerRecord) ([]*entity.Subscription, error) {
	if s.gateway == nil {
		return nil, domainErrors.ErrGatewayUnavailable
	}

	key := s.cache.keys.Subscriptions(customer.ID)
	if subs, ok := lookup[[]*entity.Subscription](ctx, s.cache, "subscriptions", key); ok {
		return subs, nil
	}

	listed, err := s.gateway.ListSubscriptions(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	subs := make([]*entity.Subscription, 0, len(listed))
	for _, sub := range listed {
		full, err := s.gateway.GetSubscription(ctx, sub.ID, []string{provider.ExpandItemProducts})
		if err != nil {
			return nil, err
		}
		subs = append(subs, full)
	}

	s.cache.put(ctx, key, subs)
	return subs, nil
}

// CreateSetupIntent starts the add-card flow for the user's customer
func (s *BillingDataService) CreateSetupIntent(ctx context.Context, userID string) (*entity.SetupIntent, error) {
	customer, err := s.resolver.Resolve(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateSetupIntent(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Setup intent created",
		zap.String("customer_id", customer.ID),
		zap.String("setup_intent_id", intent.ID))
	return intent, nil
}

// GetPortalOverview resolves the customer and loads every list for it
func (s *BillingDataService) GetPortalOverview(ctx context.Context, userID string) (*PortalOverview, error) {
	customer, err := s.resolver.Resolve(ctx, userID, []string{provider.ExpandDefaultPaymentMethod})
	if err != nil {
		return nil, err
	}

	cards, err := s.GetCards(ctx, customer)
	if err != nil {
		return nil, err
	}
	invoices, err := s.GetInvoices(ctx, customer)
	if err != nil {
		return nil, err
	}
	subs, err := s.GetSubscriptions(ctx, customer)
	if err != nil {
		return nil, err
	}

	return &PortalOverview{
		Customer:      customer,
		Cards:         cards,
		Invoices:      invoices,
		Subscriptions: subs,
	}, nil
}

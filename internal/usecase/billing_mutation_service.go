package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/metrics"
)

// StatusSuccess is returned by mutations that have no provider status of their own
const StatusSuccess = "success"

// BillingMutationService changes provider state and invalidates the affected snapshots
type BillingMutationService struct {
	gateway  provider.BillingGateway
	resolver *CustomerResolver
	cache    *snapshotCache
	events   *EventEmitter
	logger   *zap.Logger
}

func NewBillingMutationService(
	gateway provider.BillingGateway,
	resolver *CustomerResolver,
	store domainCache.Store,
	cfg config.BillingConfig,
	events *EventEmitter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BillingMutationService {
	return &BillingMutationService{
		gateway:  gateway,
		resolver: resolver,
		cache:    newSnapshotCache(store, cfg.CachePrefix, cfg.CacheTTL, m, logger),
		events:   events,
		logger:   logger,
	}
}

// CancelSubscription cancels immediately and returns the resulting status.
// It is never retried.
func (s *BillingMutationService) CancelSubscription(ctx context.Context, subscriptionID string) (string, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return "", domainErrors.ErrMissingSubscriptionID
	}
	if s.gateway == nil {
		return "", domainErrors.ErrGatewayUnavailable
	}
	return s.cancel(ctx, subscriptionID, "")
}

// CancelOwnedSubscription is CancelSubscription restricted to subscriptions of
// the session user's customer.
func (s *BillingMutationService) CancelOwnedSubscription(ctx context.Context, subscriptionID string) (string, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return "", domainErrors.ErrMissingSubscriptionID
	}
	if s.gateway == nil {
		return "", domainErrors.ErrGatewayUnavailable
	}

	customer, err := s.resolver.Resolve(ctx, "", nil)
	if err != nil {
		return "", err
	}
	return s.cancel(ctx, subscriptionID, customer.ID)
}

func (s *BillingMutationService) cancel(ctx context.Context, subscriptionID, ownerID string) (string, error) {
	sub, err := s.gateway.GetSubscription(ctx, subscriptionID, nil)
	if err != nil {
		return "", err
	}
	if ownerID != "" && sub.CustomerID != ownerID {
		s.logger.Warn("Refusing to cancel a subscription of another customer",
			zap.String("subscription_id", subscriptionID),
			zap.String("customer_id", ownerID))
		return "", domainErrors.ErrSubscriptionNotFound
	}

	canceled, err := s.gateway.CancelSubscription(ctx, subscriptionID)
	if err != nil {
		return "", err
	}

	s.cache.invalidate(ctx, s.cache.keys.Subscriptions(sub.CustomerID))

	s.logger.Info("Subscription canceled",
		zap.String("subscription_id", subscriptionID),
		zap.String("customer_id", sub.CustomerID),
		zap.String("status", canceled.Status))

	s.events.Emit(ctx, entity.EventSubscriptionCanceled, "", sub.CustomerID, map[string]any{
		"subscription_id": subscriptionID,
		"status":          canceled.Status,
	})
	return canceled.Status, nil
}

// SetDefaultPaymentMethod makes paymentMethodID the session user's default for invoices
func (s *BillingMutationService) SetDefaultPaymentMethod(ctx context.Context, paymentMethodID string) (string, error) {
	paymentMethodID = strings.TrimSpace(paymentMethodID)
	if paymentMethodID == "" {
		return "", domainErrors.ErrMissingPaymentMethod
	}
	if s.gateway == nil {
		return "", domainErrors.ErrGatewayUnavailable
	}

	user, err := s.resolver.LookupUser(ctx, "")
	if err != nil {
		return "", err
	}
	customer, err := s.resolver.ResolveUser(ctx, user, nil)
	if err != nil {
		return "", err
	}

	if _, err := s.gateway.SetDefaultPaymentMethod(ctx, customer.ID, paymentMethodID); err != nil {
		return "", err
	}

	s.cache.invalidate(ctx, s.cache.keys.Cards(customer.ID), s.cache.keys.Customer(user.ID))

	s.logger.Info("Default payment method updated",
		zap.String("user_id", user.ID),
		zap.String("customer_id", customer.ID),
		zap.String("payment_method_id", paymentMethodID))

	s.events.Emit(ctx, entity.EventCustomerDefaultPaymentMethod, user.ID, customer.ID, map[string]any{
		"payment_method_id": paymentMethodID,
	})
	return StatusSuccess, nil
}

// OnEmailChanged propagates a user's new email to the provider. It is a no-op
// when the normalized emails are equal.
func (s *BillingMutationService) OnEmailChanged(ctx context.Context, userID string, oldUser *entity.User) error {
	user, err := s.resolver.LookupUser(ctx, userID)
	if err != nil {
		return err
	}

	oldEmail := ""
	if oldUser != nil {
		oldEmail = oldUser.NormalizedEmail()
	}
	newEmail := user.NormalizedEmail()
	if newEmail == oldEmail {
		s.logger.Debug("Email unchanged, nothing to propagate", zap.String("user_id", user.ID))
		return nil
	}
	if s.gateway == nil {
		return domainErrors.ErrGatewayUnavailable
	}

	customer, err := s.resolver.ResolveUser(ctx, user, nil)
	if err != nil {
		return err
	}

	if _, err := s.gateway.UpdateCustomerEmail(ctx, customer.ID, newEmail); err != nil {
		return err
	}

	s.cache.invalidate(ctx, s.cache.keys.Customer(user.ID))

	s.logger.Info("Customer email updated",
		zap.String("user_id", user.ID),
		zap.String("customer_id", customer.ID))

	s.events.Emit(ctx, entity.EventCustomerEmailUpdated, user.ID, customer.ID, map[string]any{
		"email": newEmail,
	})
	return nil
}

// PurgeUser drops the user's customer snapshot and every list cached for its
// customer. The customer id comes from the snapshot or the persisted link; the
// provider is never called.
func (s *BillingMutationService) PurgeUser(ctx context.Context, userID string) ([]string, error) {
	customerKey := s.cache.keys.Customer(userID)
	keys := []string{customerKey}

	customerID := ""
	if cached, ok := lookup[*entity.CustomerRecord](ctx, s.cache, "customer", customerKey); ok && cached != nil {
		customerID = cached.ID
	} else {
		mapping, err := s.resolver.Link(ctx, userID)
		if err != nil {
			return nil, err
		}
		if mapping != nil {
			customerID = mapping.ProviderCustomerID
		}
	}
	if customerID != "" {
		keys = append(keys, s.cache.keys.CustomerLists(customerID)...)
	}

	s.cache.invalidate(ctx, keys...)
	s.logger.Info("User cache purged", zap.String("user_id", userID), zap.Strings("keys", keys))
	return keys, nil
}

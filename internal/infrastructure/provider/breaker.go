package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/metrics"
)

const breakerName = "stripe"

// BreakerGateway stops calling the provider after consecutive infrastructure failures.
// Provider 4xx answers (declined card, unknown id) do not count as failures.
type BreakerGateway struct {
	next provider.BillingGateway
	cb   *gobreaker.CircuitBreaker[any]
}

var _ provider.BillingGateway = (*BreakerGateway)(nil)

func NewBreakerGateway(next provider.BillingGateway, cfg config.CircuitBreakerConfig, logger *zap.Logger, m *metrics.Metrics) *BreakerGateway {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:    breakerName,
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isInfrastructureFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			m.SetBreakerState(name, float64(to))
		},
	}

	return &BreakerGateway{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

// isInfrastructureFailure is true for transport errors and provider 5xx answers
func isInfrastructureFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	return true
}

func execute[T any](b *BreakerGateway, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, domainErrors.NewProviderError("Billing provider is temporarily unavailable, please try again later.", err)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (b *BreakerGateway) GetCustomer(ctx context.Context, id string, expand []string) (entity.LookupResult, error) {
	return execute(b, func() (entity.LookupResult, error) { return b.next.GetCustomer(ctx, id, expand) })
}

func (b *BreakerGateway) FindCustomersByEmail(ctx context.Context, email string, limit int64) ([]*entity.CustomerRecord, error) {
	return execute(b, func() ([]*entity.CustomerRecord, error) { return b.next.FindCustomersByEmail(ctx, email, limit) })
}

func (b *BreakerGateway) CreateCustomer(ctx context.Context, email, userID string) (*entity.CustomerRecord, error) {
	return execute(b, func() (*entity.CustomerRecord, error) { return b.next.CreateCustomer(ctx, email, userID) })
}

func (b *BreakerGateway) UpdateCustomerEmail(ctx context.Context, id, email string) (*entity.CustomerRecord, error) {
	return execute(b, func() (*entity.CustomerRecord, error) { return b.next.UpdateCustomerEmail(ctx, id, email) })
}

func (b *BreakerGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*entity.CustomerRecord, error) {
	return execute(b, func() (*entity.CustomerRecord, error) {
		return b.next.SetDefaultPaymentMethod(ctx, customerID, paymentMethodID)
	})
}

func (b *BreakerGateway) CreateSetupIntent(ctx context.Context, customerID string) (*entity.SetupIntent, error) {
	return execute(b, func() (*entity.SetupIntent, error) { return b.next.CreateSetupIntent(ctx, customerID) })
}

func (b *BreakerGateway) ListPaymentMethods(ctx context.Context, customerID, methodType string) ([]*entity.PaymentMethod, error) {
	return execute(b, func() ([]*entity.PaymentMethod, error) { return b.next.ListPaymentMethods(ctx, customerID, methodType) })
}

func (b *BreakerGateway) ListInvoices(ctx context.Context, customerID string) ([]*entity.Invoice, error) {
	return execute(b, func() ([]*entity.Invoice, error) { return b.next.ListInvoices(ctx, customerID) })
}

func (b *BreakerGateway) ListSubscriptions(ctx context.Context, customerID string) ([]*entity.Subscription, error) {
	return execute(b, func() ([]*entity.Subscription, error) { return b.next.ListSubscriptions(ctx, customerID) })
}

func (b *BreakerGateway) GetSubscription(ctx context.Context, id string, expand []string) (*entity.Subscription, error) {
	return execute(b, func() (*entity.Subscription, error) { return b.next.GetSubscription(ctx, id, expand) })
}

func (b *BreakerGateway) CancelSubscription(ctx context.Context, id string) (*entity.Subscription, error) {
	return execute(b, func() (*entity.Subscription, error) { return b.next.CancelSubscription(ctx, id) })
}

package provider

import (
	"errors"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/metrics"
	stripeProvider "github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/provider/stripe"
)

var errMissingSecretKey = errors.New("stripe secret key not configured")

// Factory creates the process-wide billing gateway
type Factory struct {
	stripe  config.StripeConfig
	breaker config.CircuitBreakerConfig
	logger  *zap.Logger
	metrics *metrics.Metrics

	// backends overrides Stripe's default backends, used to point at a test server
	backends *stripe.Backends
}

// NewFactory creates a new provider factory
func NewFactory(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Factory {
	return &Factory{
		stripe:  cfg.Stripe,
		breaker: cfg.Billing.CircuitBreaker,
		logger:  logger,
		metrics: m,
	}
}

// WithBackends points the Stripe client at custom backends
func (f *Factory) WithBackends(backends *stripe.Backends) *Factory {
	f.backends = backends
	return f
}

// GetGateway returns the billing gateway, or a CONFIGURATION error when the
// provider credentials are missing.
func (f *Factory) GetGateway() (provider.BillingGateway, error) {
	if f.stripe.SecretKey == "" {
		return nil, domainErrors.NewConfigurationError(errMissingSecretKey)
	}

	backends := f.backends
	if backends == nil {
		backends = stripeProvider.NewBackends("", nil)
	}

	if f.stripe.AppName != "" {
		stripe.SetAppInfo(&stripe.AppInfo{
			Name:    f.stripe.AppName,
			Version: f.stripe.AppVersion,
			URL:     f.stripe.AppURL,
		})
	}

	var gateway provider.BillingGateway = stripeProvider.NewGateway(f.stripe.SecretKey, backends, f.logger, f.metrics)
	if f.breaker.Enabled {
		gateway = NewBreakerGateway(gateway, f.breaker, f.logger, f.metrics)
	}

	f.logger.Info("Billing gateway initialized",
		zap.String("provider", string(provider.ProviderTypeStripe)),
		zap.Bool("circuit_breaker", f.breaker.Enabled),
	)
	return gateway, nil
}

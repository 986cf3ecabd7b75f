package errors

import (
	apperrors "github.com/nexusmerchants/orderforms-stripe/pkg/errors"
)

// MsgGatewayUnavailable is shown when the billing gateway could not be built
const MsgGatewayUnavailable = "Could not create Stripe client. Did you set up your Stripe API keys in the portal configuration?"

var (
	// ErrGatewayUnavailable indicates that no billing gateway is configured
	ErrGatewayUnavailable = apperrors.NewAppError(apperrors.ErrConfiguration, MsgGatewayUnavailable, nil)

	// ErrMissingSubscriptionID is returned before any provider call
	ErrMissingSubscriptionID = apperrors.NewAppError(apperrors.ErrValidation, "Missing subscription ID", nil)

	// ErrMissingPaymentMethod is returned before any provider call
	ErrMissingPaymentMethod = apperrors.NewAppError(apperrors.ErrValidation, "Missing paymentMethod", nil)

	// ErrSubscriptionNotFound hides subscriptions the caller does not own
	ErrSubscriptionNotFound = apperrors.NewAppError(apperrors.ErrValidation, "No such subscription", nil)

	// ErrUserNotFound indicates the host application has no such user
	ErrUserNotFound = apperrors.NewAppError(apperrors.ErrNotFound, "user not found", nil)

	// ErrNoSessionUser indicates the request carries no authenticated user
	ErrNoSessionUser = apperrors.NewAppError(apperrors.ErrUnauthenticated, "no authenticated user", nil)
)

// NewConfigurationError wraps a gateway construction failure
func NewConfigurationError(err error) error {
	return apperrors.NewAppError(apperrors.ErrConfiguration, MsgGatewayUnavailable, err)
}

// NewProviderError wraps a remote failure, keeping the provider's message
func NewProviderError(message string, err error) error {
	if message == "" && err != nil {
		message = err.Error()
	}
	return apperrors.NewAppError(apperrors.ErrProvider, message, err)
}

// NewValidationError reports missing or malformed input
func NewValidationError(message string) error {
	return apperrors.NewAppError(apperrors.ErrValidation, message, nil)
}

// IsConfiguration reports whether err means no gateway is available
func IsConfiguration(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrConfiguration)
}

// IsProvider reports whether err came from the billing provider
func IsProvider(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrProvider)
}

// IsNotFound reports whether err is a NOT_FOUND AppError
func IsNotFound(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrNotFound)
}

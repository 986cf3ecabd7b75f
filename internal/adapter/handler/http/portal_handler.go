package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/middleware/auth"
	"github.com/nexusmerchants/orderforms-stripe/internal/usecase"
	apperrors "github.com/nexusmerchants/orderforms-stripe/pkg/errors"
)

// PortalHandler serves the customer portal to the signed-in user
type PortalHandler struct {
	logger    *zap.Logger
	resolver  *usecase.CustomerResolver
	data      *usecase.BillingDataService
	mutations *usecase.BillingMutationService
}

func NewPortalHandler(
	logger *zap.Logger,
	resolver *usecase.CustomerResolver,
	data *usecase.BillingDataService,
	mutations *usecase.BillingMutationService,
) *PortalHandler {
	return &PortalHandler{
		logger:    logger,
		resolver:  resolver,
		data:      data,
		mutations: mutations,
	}
}

// GetCustomer handles GET /api/v1/portal/customer
func (h *PortalHandler) GetCustomer(c echo.Context) error {
	customer, err := h.resolver.Resolve(c.Request().Context(), "", []string{provider.ExpandDefaultPaymentMethod})
	if err != nil {
		return h.fail(c, err, "Failed to resolve customer")
	}
	return c.JSON(http.StatusOK, toCustomerResponse(customer))
}

// GetCards handles GET /api/v1/portal/cards
func (h *PortalHandler) GetCards(c echo.Context) error {
	ctx := c.Request().Context()

	customer, err := h.resolver.Resolve(ctx, "", nil)
	if err != nil {
		return h.fail(c, err, "Failed to resolve customer")
	}

	cards, err := h.data.GetCards(ctx, customer)
	if err != nil {
		return h.fail(c, err, "Failed to list cards", zap.String("customer_id", customer.ID))
	}
	return c.JSON(http.StatusOK, echo.Map{"cards": toCardsResponse(cards, customer.DefaultPaymentMethodID)})
}

// GetInvoices handles GET /api/v1/portal/invoices
func (h *PortalHandler) GetInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	customer, err := h.resolver.Resolve(ctx, "", nil)
	if err != nil {
		return h.fail(c, err, "Failed to resolve customer")
	}

	invoices, err := h.data.GetInvoices(ctx, customer)
	if err != nil {
		return h.fail(c, err, "Failed to list invoices", zap.String("customer_id", customer.ID))
	}
	return c.JSON(http.StatusOK, echo.Map{"invoices": toInvoicesResponse(invoices)})
}

// GetSubscriptions handles GET /api/v1/portal/subscriptions
func (h *PortalHandler) GetSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	customer, err := h.resolver.Resolve(ctx, "", nil)
	if err != nil {
		return h.fail(c, err, "Failed to resolve customer")
	}

	subs, err := h.data.GetSubscriptions(ctx, customer)
	if err != nil {
		return h.fail(c, err, "Failed to list subscriptions", zap.String("customer_id", customer.ID))
	}
	return c.JSON(http.StatusOK, echo.Map{"subscriptions": toSubscriptionsResponse(subs)})
}

// GetOverview handles GET /api/v1/portal/overview
func (h *PortalHandler) GetOverview(c echo.Context) error {
	overview, err := h.data.GetPortalOverview(c.Request().Context(), "")
	if err != nil {
		return h.fail(c, err, "Failed to load portal overview")
	}
	return c.JSON(http.StatusOK, toOverviewResponse(overview))
}

// CreateSetupIntent handles POST /api/v1/portal/setup-intents
func (h *PortalHandler) CreateSetupIntent(c echo.Context) error {
	intent, err := h.data.CreateSetupIntent(c.Request().Context(), "")
	if err != nil {
		return h.fail(c, err, "Failed to create setup intent")
	}
	return c.JSON(http.StatusCreated, intent)
}

// CancelSubscription handles POST /api/v1/portal/subscriptions/cancel
func (h *PortalHandler) CancelSubscription(c echo.Context) error {
	var req CancelSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err, "Invalid cancel request")
	}

	status, err := h.mutations.CancelOwnedSubscription(c.Request().Context(), req.SubscriptionID)
	if err != nil {
		return h.fail(c, err, "Failed to cancel subscription",
			zap.String("subscription_id", req.SubscriptionID))
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: status})
}

// SetDefaultPaymentMethod handles POST /api/v1/portal/payment-methods/default
func (h *PortalHandler) SetDefaultPaymentMethod(c echo.Context) error {
	var req SetDefaultPaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err, "Invalid payment method request")
	}

	status, err := h.mutations.SetDefaultPaymentMethod(c.Request().Context(), req.PaymentMethod)
	if err != nil {
		return h.fail(c, err, "Failed to set default payment method",
			zap.String("payment_method_id", req.PaymentMethod))
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: status})
}

// fail writes {"error": ...} with the status mapped from the error code.
// Client-side failures are logged at WARN, everything else at ERROR.
func (h *PortalHandler) fail(c echo.Context, err error, msg string, fields ...zap.Field) error {
	return writeError(c, h.logger, err, msg, fields...)
}

func writeError(c echo.Context, logger *zap.Logger, err error, msg string, fields ...zap.Field) error {
	status := apperrors.StatusOf(err)

	if user, lookupErr := auth.GetUserFromContext(c); lookupErr == nil {
		fields = append(fields, zap.String("user_id", user.ID))
	}
	fields = append(fields, zap.Int("status", status), zap.Error(err))
	if status >= http.StatusInternalServerError {
		logger.Error(msg, fields...)
	} else {
		logger.Warn(msg, fields...)
	}

	return c.JSON(status, echo.Map{"error": apperrors.PublicMessage(err)})
}

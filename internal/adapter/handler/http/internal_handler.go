package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	"github.com/nexusmerchants/orderforms-stripe/internal/usecase"
)

// InternalHandler exposes hooks the host application calls server-to-server
type InternalHandler struct {
	logger    *zap.Logger
	mutations *usecase.BillingMutationService
}

func NewInternalHandler(logger *zap.Logger, mutations *usecase.BillingMutationService) *InternalHandler {
	return &InternalHandler{
		logger:    logger,
		mutations: mutations,
	}
}

// EmailChanged handles POST /api/v1/internal/users/:id/email-changed.
// The host calls it after a profile update with the email the user had before.
func (h *InternalHandler) EmailChanged(c echo.Context) error {
	var req EmailChangedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.logger, err, "Invalid email change request")
	}

	h.logger.Info("Processing email change",
		zap.String("user_id", req.UserID))

	oldUser := &entity.User{ID: req.UserID, Email: req.OldEmail}
	if err := h.mutations.OnEmailChanged(c.Request().Context(), req.UserID, oldUser); err != nil {
		return writeError(c, h.logger, err, "Failed to propagate email change",
			zap.String("user_id", req.UserID))
	}
	return c.NoContent(http.StatusNoContent)
}

// PurgeCache handles DELETE /api/v1/internal/users/:id/cache
func (h *InternalHandler) PurgeCache(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user id required"})
	}

	keys, err := h.mutations.PurgeUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to purge user cache",
			zap.String("user_id", userID))
	}
	return c.JSON(http.StatusOK, PurgeResponse{Keys: keys})
}

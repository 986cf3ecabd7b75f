package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InternalTokenHeader carries the shared secret for host-application hooks
const InternalTokenHeader = "X-Internal-Token"

// InternalTokenMiddleware rejects requests whose X-Internal-Token does not match token.
// An empty token disables every route behind it.
func InternalTokenMiddleware(token string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(InternalTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logger.Warn("Rejected internal request",
					zap.String("path", c.Request().URL.Path),
					zap.String("remote_ip", c.RealIP()))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid internal token",
					"code":  "INVALID_INTERNAL_TOKEN",
				})
			}
			return next(c)
		}
	}
}

package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handlers "github.com/nexusmerchants/orderforms-stripe/internal/adapter/handler/http"
	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	"github.com/nexusmerchants/orderforms-stripe/internal/middleware/auth"
	"github.com/nexusmerchants/orderforms-stripe/pkg/logger"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Portal   *handlers.PortalHandler
	Internal *handlers.InternalHandler
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	handlers Handlers
}

func NewServer(cfg *config.Config, log *zap.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()

	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	if cfg.Service.ClientURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{cfg.Service.ClientURL},
			AllowMethods: []string{echo.GET, echo.POST, echo.DELETE},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		handlers: h,
	}
	s.setupRoutes()
	return s
}

// Echo exposes the router, mainly for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start() error {
	addr := s.config.Server.HTTP.Addr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	if s.handlers.Gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.handlers.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.echo.Group("/api/v1")

	// Portal routes (require JWT authentication)
	portal := v1.Group("/portal", auth.JWTMiddleware(auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
	}))
	portal.GET("/customer", s.handlers.Portal.GetCustomer)
	portal.GET("/cards", s.handlers.Portal.GetCards)
	portal.GET("/invoices", s.handlers.Portal.GetInvoices)
	portal.GET("/subscriptions", s.handlers.Portal.GetSubscriptions)
	portal.GET("/overview", s.handlers.Portal.GetOverview)
	portal.POST("/setup-intents", s.handlers.Portal.CreateSetupIntent)
	portal.POST("/subscriptions/cancel", s.handlers.Portal.CancelSubscription)
	portal.POST("/payment-methods/default", s.handlers.Portal.SetDefaultPaymentMethod)

	// Host application hooks
	internal := v1.Group("/internal", auth.InternalTokenMiddleware(s.config.JWT.InternalToken, s.logger))
	internal.POST("/users/:id/email-changed", s.handlers.Internal.EmailChanged)
	internal.DELETE("/users/:id/cache", s.handlers.Internal.PurgeCache)
}

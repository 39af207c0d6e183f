package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/ledger-system/docs"
	"github.com/99minutos/ledger-system/internal/api/handler"
	"github.com/99minutos/ledger-system/internal/api/metrics"
	"github.com/99minutos/ledger-system/internal/api/middleware"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

// StateCounter is implemented by services that can report live state sizes.
type StateCounter interface {
	SessionCount() int
	CSRFTokenCount() int
}

// Dependencies is everything NewRouter needs to wire the HTTP surface.
type Dependencies struct {
	Service ports.LedgerService
	Cookie  handler.CookieConfig
	Log     zerolog.Logger
	// Registry receives HTTP and ledger metrics and backs /metrics.
	// A fresh registry is used when nil.
	Registry *prometheus.Registry
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.PingFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)
	if sc, ok := deps.Service.(StateCounter); ok {
		metrics.RegisterStateGauges(reg, sc.SessionCount, sc.CSRFTokenCount)
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "ledger",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(deps.Cookie.Name))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Service, deps.Cookie, m)
	accountHandler := handler.NewAccountHandler(deps.Service)
	transferHandler := handler.NewTransferHandler(deps.Service, m)
	healthHandler := handler.NewHealthHandler(deps.Readiness)

	// --- Ledger routes ---
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.GET("/", accountHandler.View)
	e.GET("/account", accountHandler.View)
	e.POST("/transfer", transferHandler.Transfer)

	// --- Operations ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

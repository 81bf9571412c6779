// Package server wires the services into the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/auth"
	"github.com/sliramanoel/venda/internal/config"
	"github.com/sliramanoel/venda/internal/gateway"
	"github.com/sliramanoel/venda/internal/handler"
	"github.com/sliramanoel/venda/internal/i18n"
	"github.com/sliramanoel/venda/internal/middleware"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/pix"
	"github.com/sliramanoel/venda/internal/service"
	"gorm.io/gorm"
)

// Services holds everything the router exposes
type Services struct {
	Orders    service.OrderService
	Payments  service.PaymentService
	Webhooks  service.WebhookService
	Settings  service.SettingsService
	Analytics service.AnalyticsService
	Users     service.UserService
	Auth      *service.AuthenticationService
	Authz     *service.AuthorizationService
}

// NewServices builds the service graph over db
func NewServices(cfg *config.Config, db *gorm.DB) (*Services, error) {
	store := service.NewOrderStore(db)
	settings := service.NewSettingsService(db, cfg.Payment.MerchantName)

	paymentOpts := service.PaymentOptions{
		Settings: model.PaymentSettings{
			Gateway:           cfg.Payment.Gateway,
			APIKey:            cfg.Payment.APIKey,
			TestMode:          cfg.Payment.TestMode,
			ExpirationMinutes: cfg.Payment.ExpirationMinutes,
		},
		Generator: pix.Generator{
			MerchantName: cfg.Payment.MerchantName,
			MerchantCity: cfg.Payment.MerchantCity,
			KeyDomain:    cfg.Payment.PixKeyDomain,

			FoldMerchantName: cfg.Payment.FoldMerchantName,
		},
		Renderer: pix.NewPNGRenderer(cfg.Payment.QRSize),
		Merchant: settings,
	}
	if paymentOpts.Settings.UsesGateway() {
		paymentOpts.Gateway = gateway.NewOrionPayClient(cfg.Payment.APIURL, cfg.Payment.APIKey, cfg.Payment.Timeout)
	} else {
		log.Println("[PIX] no gateway API key or test mode enabled, charges are generated locally")
	}

	users := service.NewUserService(db)
	authz, err := service.NewAuthorizationService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authorization service: %w", err)
	}

	return &Services{
		Orders:   service.NewOrderService(store),
		Payments: service.NewPaymentService(store, paymentOpts),
		Webhooks: service.NewWebhookService(store, service.WebhookOptions{
			Secret:           cfg.Payment.WebhookSecret,
			RequireSignature: cfg.Payment.RequireSignature,
		}),
		Settings:  settings,
		Analytics: service.NewAnalyticsService(db),
		Users:     users,
		Auth:      service.NewAuthenticationService(users, auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)),
		Authz:     authz,
	}, nil
}

// NewRouter mounts the API under /api plus a /health probe
func NewRouter(cfg *config.Config, svcs *Services) *gin.Engine {
	handler.UseJSONFieldNames()

	r := gin.Default()
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.Language(i18n.Parse(cfg.Server.Language)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	orderHandler := handler.NewOrderHandler(svcs.Orders)
	paymentHandler := handler.NewPaymentHandler(svcs.Payments)
	webhookHandler := handler.NewWebhookHandler(svcs.Webhooks)
	settingsHandler := handler.NewSettingsHandler(svcs.Settings)
	analyticsHandler := handler.NewAnalyticsHandler(svcs.Analytics)
	authHandler := handler.NewAuthHandler(svcs.Auth, svcs.Authz)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	limited := limiter.Middleware()
	authenticated := middleware.AuthMiddleware(svcs.Auth)
	can := func(resource, action string) gin.HandlerFunc {
		return middleware.RequirePermission(svcs.Authz, resource, action)
	}

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", limited, authHandler.Login)
	authRoutes.POST("/register", limited, authHandler.Register)
	authRoutes.GET("/me", authenticated, authHandler.Me)
	authRoutes.POST("/verify", authenticated, authHandler.Verify)

	orders := api.Group("/orders")
	orders.POST("", limited, orderHandler.CreateOrder)
	orders.POST("/validate", limited, orderHandler.ValidateContact)
	orders.GET("", authenticated, can(service.ResourceOrders, service.ActionRead), orderHandler.ListOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.GET("/:id/history", authenticated, can(service.ResourceOrders, service.ActionRead), orderHandler.History)
	orders.PATCH("/:id/status", authenticated, can(service.ResourceOrders, service.ActionWrite), orderHandler.UpdateStatus)

	payments := api.Group("/payments")
	payments.POST("/pix/generate", paymentHandler.GeneratePix)
	payments.GET("/pix/status/:order_id", paymentHandler.PixStatus)

	webhooks := api.Group("/webhooks")
	webhooks.POST("/orionpay", webhookHandler.OrionPay)
	webhooks.GET("/orionpay/test", webhookHandler.Probe)

	api.GET("/settings", settingsHandler.GetSettings)
	api.PUT("/settings", authenticated, can(service.ResourceSettings, service.ActionWrite), settingsHandler.UpdateSettings)
	api.GET("/images", settingsHandler.GetImages)
	api.PUT("/images", authenticated, can(service.ResourceSettings, service.ActionWrite), settingsHandler.UpdateImages)

	analytics := api.Group("/analytics")
	analytics.POST("/track/pageview", limited, analyticsHandler.TrackPageView)
	analytics.POST("/track/action", limited, analyticsHandler.TrackAction)
	analytics.GET("/stats/overview", authenticated, can(service.ResourceAnalytics, service.ActionRead), analyticsHandler.Overview)

	return r
}

// Run serves handler until ctx is cancelled, then drains in-flight requests
func Run(ctx context.Context, cfg config.ServerConfig, h http.Handler) error {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

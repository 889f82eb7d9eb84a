package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"finance-assistant/internal/config"
	"finance-assistant/internal/database"
	"finance-assistant/internal/events"
	"finance-assistant/internal/handlers"
	"finance-assistant/internal/middleware"
	"finance-assistant/internal/repositories"
	"finance-assistant/internal/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	rateLimiterCleanupInterval = time.Minute
	tokenCleanupInterval       = time.Hour
)

// Server owns the HTTP router and the services behind it.
type Server struct {
	echo        *echo.Echo
	config      *config.Config
	db          *database.DB
	rateLimiter *middleware.IPRateLimiter
	recurring   services.RecurringProcessorInterface
	logger      *slog.Logger
}

// New builds the repositories, services and routes on top of db.
// Application metrics are registered with registry and served next to the default gatherer.
func New(cfg *config.Config, db *database.DB, publisher events.Publisher, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	metrics := services.NewPrometheusMetrics(registry)

	userRepo := repositories.NewUserRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db.DB)
	blacklistedTokenRepo := repositories.NewBlacklistedTokenRepository(db.DB)

	tokenService := services.NewTokenService(&cfg.JWT)
	passwordService := services.NewPasswordService(cfg.Security)
	auditService := services.NewAuditService(auditRepo)
	authService := services.NewAuthService(
		userRepo,
		refreshTokenRepo,
		auditRepo,
		blacklistedTokenRepo,
		passwordService,
		tokenService,
		metrics,
		logger,
	)
	userService := services.NewUserService(userRepo, refreshTokenRepo, passwordService, auditService)
	categoryService := services.NewCategoryService(categoryRepo, transactionRepo)
	transactionService := services.NewTransactionService(transactionRepo, categoryRepo, publisher, metrics, logger)
	dashboardService := services.NewDashboardService(transactionRepo, metrics, logger)

	s := &Server{
		echo:        echo.New(),
		config:      cfg,
		db:          db,
		rateLimiter: middleware.NewIPRateLimiter(cfg.Security.RateLimitPerSecond, 0),
		recurring:   services.NewRecurringProcessor(transactionRepo, publisher, metrics, logger, cfg.Recurring.MaxCatchUp),
		logger:      logger,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.Server.CORSAllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.TraceIDHeader},
		ExposeHeaders: []string{middleware.TraceIDHeader},
	}))

	healthHandler := handlers.NewHealthCheckHandler(db.DB)
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, registry},
		promhttp.HandlerOpts{},
	)))

	requireAuth := middleware.RequireAuth(tokenService, blacklistedTokenRepo)
	api := e.Group("/api")

	authHandler := handlers.NewAuthHandler(authService)
	auth := api.Group("/auth", s.rateLimiter.Middleware())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout)

	userHandler := handlers.NewUserHandler(userService)
	users := api.Group("/users", requireAuth)
	users.GET("/profile", userHandler.GetProfile)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.DELETE("/profile", userHandler.DeleteProfile)
	users.PUT("/change-password", userHandler.ChangePassword)
	users.GET("/activity", userHandler.GetActivity)

	categoryHandler := handlers.NewCategoryHandler(categoryService)
	categories := api.Group("/categories", requireAuth)
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactionHandler := handlers.NewTransactionHandler(transactionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	transactions := api.Group("/transactions", requireAuth)

	dashboard := transactions.Group("/dashboard")
	dashboard.GET("/balance", dashboardHandler.GetBalance)
	dashboard.GET("/monthly-summary", dashboardHandler.GetMonthlySummary)
	dashboard.GET("/recent", dashboardHandler.GetRecentTransactions)
	dashboard.GET("/spending-categories", dashboardHandler.GetSpendingCategories)
	dashboard.GET("/financial-trends", dashboardHandler.GetFinancialTrends)

	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
}

// RecurringProcessor returns the processor wired to the same repositories and publisher as the API.
func (s *Server) RecurringProcessor() services.RecurringProcessorInterface {
	return s.recurring
}

// Run serves HTTP until ctx is cancelled and then shuts down within the configured timeout.
// The rate limiter cleanup, token cleanup and, when enabled, the recurring processor run alongside it.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.Address(),
		Handler:      s.echo,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting HTTP server", "address", httpServer.Addr, "environment", s.config.Server.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		s.logger.Info("shutting down HTTP server", "timeout", s.config.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
		s.logger.Info("HTTP server stopped")
		return nil
	})

	g.Go(func() error {
		s.rateLimiter.RunCleanup(gctx, rateLimiterCleanupInterval)
		return nil
	})

	g.Go(func() error {
		s.cleanupTokens(gctx, tokenCleanupInterval)
		return nil
	})

	if s.config.Recurring.Enabled {
		g.Go(func() error {
			s.recurring.Run(gctx, s.config.Recurring.Interval)
			return nil
		})
	}

	return g.Wait()
}

func (s *Server) cleanupTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.db.CleanupExpiredTokens(); err != nil {
				s.logger.Warn("failed to clean up expired tokens", "error", err)
			}
		}
	}
}

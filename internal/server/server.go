package server

import (
	"fmt"
	"net/http"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/database"
	custommiddleware "storefront-api/internal/middleware"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"
	"storefront-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          database.Service
	redisClient *redis.Client
}

// NewServer wires repositories, services and handlers onto a chi router.
// redisClient may be nil when rate limiting is disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db.DB())
	orderItemRepo := repository.NewOrderItemRepository(db.DB())
	transactionRepo := repository.NewTransactionRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())

	txManager := repository.NewNoopTxManager()
	if cfg.Orders.Atomic {
		txManager = repository.NewSQLTxManager(db.DB())
	}

	// Initialize services
	orderService := service.NewOrderService(
		orderRepo,
		orderItemRepo,
		transactionRepo,
		txManager,
		service.OrderServiceConfig{CompensationMaxRetries: uint64(max(cfg.Orders.CompensationMaxRetries, 0))},
		logger,
	)
	productService := service.NewProductService(productRepo)

	// Initialize handlers
	orderHandler := transport.NewOrderHandler(orderService, logger)
	productHandler := transport.NewProductHandler(productService, logger)

	protected := []func(http.Handler) http.Handler{
		custommiddleware.AuthMiddleware(cfg.Auth.JWTSecret, logger),
		custommiddleware.RequireRole(cfg.Auth.AllowedRoles, logger),
	}
	if cfg.RateLimit.Enabled && redisClient != nil {
		protected = append(protected, custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "rate_limit",
		}, logger))
	}

	// Register routes
	orderHandler.RegisterRoutes(router, protected...)
	productHandler.RegisterRoutes(router, protected...)

	logger.Info("Routes registered",
		zap.Bool("orders_atomic", cfg.Orders.Atomic),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled && redisClient != nil),
	)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"inventory-backoffice/internal/composer"
	"inventory-backoffice/internal/config"
	"inventory-backoffice/internal/eventbus"
	"inventory-backoffice/internal/logger"
	custommiddleware "inventory-backoffice/internal/middleware"
	"inventory-backoffice/internal/repository"
	"inventory-backoffice/internal/service"
	"inventory-backoffice/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	redis     *redis.Client
	publisher eventbus.Publisher
}

func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	stockPolicy, err := composer.ParseStockPolicy(cfg.Sales.StockPolicy)
	if err != nil {
		return nil, err
	}
	discountPolicy, err := composer.ParseDiscountPolicy(cfg.Sales.DiscountPolicy)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	publisher := newPublisher(cfg.AMQP, log)

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger.Component(log, "http")))
	router.Use(custommiddleware.ErrorHandlingMiddleware(log))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", healthHandler(redisClient))

	// Initialize repositories
	resourceClient := repository.NewResourceClient(cfg.Resource.BaseURL, cfg.Resource.Timeout, logger.Component(log, "resource"))
	productRepo := repository.NewProductRepository(resourceClient)
	categoryRepo := repository.NewCategoryRepository(resourceClient)
	saleRepo := repository.NewSaleRepository(resourceClient)
	supplierRepo := repository.NewSupplierRepository(resourceClient)

	// Initialize services
	compositionService := service.NewCompositionService(
		productRepo,
		resourceClient,
		publisher,
		service.CompositionConfig{
			SessionTTL:     cfg.Sales.SessionTTL,
			StockPolicy:    stockPolicy,
			DiscountPolicy: discountPolicy,
		},
		logger.Component(log, "composer"),
	)
	saleService := service.NewSaleService(saleRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	dashboardService := service.NewDashboardService(resourceClient)

	// Initialize handlers
	draftHandler := transport.NewSaleDraftHandler(compositionService, log)
	saleHandler := transport.NewSaleHandler(saleService, log)
	catalogHandler := transport.NewCatalogHandler(catalogService, log)
	supplierHandler := transport.NewSupplierHandler(supplierService, log)
	dashboardHandler := transport.NewDashboardHandler(dashboardService, log)

	// Register API routes behind the rate limiter
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "rate_limit:api",
		}, log))

		draftHandler.RegisterRoutes(r)
		saleHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)
		supplierHandler.RegisterRoutes(r)
		dashboardHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    log,
		redis:     redisClient,
		publisher: publisher,
	}

	return server, nil
}

// newPublisher connects to RabbitMQ when configured. Events are best effort,
// so a broker that cannot be reached at startup disables publishing.
func newPublisher(cfg config.AMQPConfig, log *zap.Logger) eventbus.Publisher {
	eventLog := logger.Component(log, "eventbus")
	if cfg.URL == "" {
		eventLog.Info("AMQP_URL not set, sale events are not published")
		return eventbus.NewNopPublisher(eventLog)
	}

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.URL, cfg.Exchange, eventLog)
	if err != nil {
		eventLog.Error("Failed to connect to RabbitMQ, sale events are not published", zap.Error(err))
		return eventbus.NewNopPublisher(eventLog)
	}
	return publisher
}

type healthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis"`
}

func healthHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		response := healthResponse{Status: "ok", Redis: "up"}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			response.Redis = "down"
		}

		custommiddleware.RespondWithJSON(w, http.StatusOK, response)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.publisher.Close(); err != nil {
		s.logger.Error("Failed to close event publisher", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

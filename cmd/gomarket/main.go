package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/gomarket/config"
	"github.com/rookgm/gomarket/internal/auth"
	handler "github.com/rookgm/gomarket/internal/handler/http"
	"github.com/rookgm/gomarket/internal/middleware"
	"github.com/rookgm/gomarket/internal/repository"
	"github.com/rookgm/gomarket/internal/repository/postgres"
	"github.com/rookgm/gomarket/internal/service"
	"github.com/rookgm/gomarket/internal/stock"
	"github.com/rookgm/gomarket/internal/worker"
	"go.uber.org/zap"
)

const defaultAuthTokenKey = "f53ac685bbceebd75043e6be2e06ee07"

// newLogger creates logger with log level
func newLogger(level string) (*zap.Logger, error) {

	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	err = db.Migrate()
	if err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	if cfg.WebhookSecret == "" {
		logger.Fatal("Webhook secret is not configured")
	}

	authTokenKey := cfg.AuthTokenKey
	if authTokenKey == "" {
		authTokenKey = defaultAuthTokenKey
	}
	tokenKey, err := hex.DecodeString(authTokenKey)
	if err != nil {
		logger.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// dependency injection
	// user
	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo)
	userHandler := handler.NewUserHandler(userService, token)

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// stock restoration with background retry
	stockClient := stock.NewClient(cfg.StockServiceAddr)
	restockProcessor := worker.NewRestockProcessor(stockClient, logger)
	go restockProcessor.Run(ctx)

	// payment request and history
	paymentService := service.NewPaymentService(orderRepo, paymentRepo)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// gateway webhook
	webhookService := service.NewWebhookService(db, orderRepo, paymentRepo, restockProcessor, cfg.WebhookSecret, logger)
	webhookHandler := handler.NewWebhookHandler(webhookService)

	// refund
	refundService := service.NewRefundService(db, orderRepo, paymentRepo, logger)
	refundHandler := handler.NewRefundHandler(refundService)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger))

	router.Post("/api/user/register", userHandler.RegisterUser())
	router.Post("/api/user/login", userHandler.LoginUser())
	router.Post("/api/payments/webhook", webhookHandler.PaymentWebhook())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))
		group.Post("/api/payments/{orderID}/request", paymentHandler.RequestUserPayment())
		group.Post("/api/payments/{orderID}/refund", refundHandler.RefundOrderPayment())
		group.Get("/api/payments/history", paymentHandler.ListUserPaymentsHistory())
	})

	logger.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Fatal("Error starting server", zap.Error(err))
	}
}

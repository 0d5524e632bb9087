package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/veloxpay/velox/api"
	"github.com/veloxpay/velox/config"
	"github.com/veloxpay/velox/db"
	"github.com/veloxpay/velox/gateway"
	"github.com/veloxpay/velox/middleware"
	"github.com/veloxpay/velox/services"
	"github.com/veloxpay/velox/stores"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorBold   = "\033[1m"
)

func printStep(step, message string) {
	fmt.Printf("%s[%s]%s %s%s%s\n", colorBlue, step, colorReset, colorBold, message, colorReset)
}

func printSuccess(message string) {
	fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, message)
}

func printWarning(message string) {
	fmt.Printf("%s⚠%s %s\n", colorYellow, colorReset, message)
}

func printError(message string) {
	fmt.Printf("%s✗%s %s\n", colorRed, colorReset, message)
}

func main() {
	printStep("1/6", "Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		printError(fmt.Sprintf("Failed to load configuration: %v", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		printError(fmt.Sprintf("Configuration validation failed: %v", err))
		os.Exit(1)
	}
	printSuccess("Configuration loaded")

	printStep("2/6", "Connecting to database...")
	database, err := db.Connect(cfg.GetDatabaseURL())
	if err != nil {
		printError(fmt.Sprintf("Failed to connect to database: %v", err))
		os.Exit(1)
	}
	sqlDB, err := database.DB()
	if err != nil {
		printError(fmt.Sprintf("Failed to get database instance: %v", err))
		os.Exit(1)
	}
	defer sqlDB.Close()
	printSuccess(fmt.Sprintf("Connected to PostgreSQL at %s:%d", cfg.Database.Host, cfg.Database.Port))

	printStep("3/6", "Initializing idempotency store...")
	var idempotencyStore stores.IdempotencyStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + strconv.Itoa(cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err = redisClient.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			printWarning(fmt.Sprintf("Redis unreachable (%v), falling back to in-memory store", err))
		} else {
			defer redisClient.Close()
			idempotencyStore = stores.CreateRedisIdempotencyStore(redisClient, cfg.Idempotency.Retention)
			printSuccess(fmt.Sprintf("Redis idempotency store at %s:%d", cfg.Redis.Host, cfg.Redis.Port))
		}
	}
	if idempotencyStore == nil {
		memStore := stores.CreateMemoryIdempotencyStore(stores.MemoryIdempotencyStoreConfig{
			Retention:     cfg.Idempotency.Retention,
			SweepInterval: cfg.Idempotency.SweepInterval,
			MaxEntries:    cfg.Idempotency.MaxEntries,
		})
		defer memStore.Close()
		idempotencyStore = memStore
		printSuccess("In-memory idempotency store")
	}

	printStep("4/6", "Initializing gateway client...")
	httpClient := gateway.NewHTTPClient(gateway.ClientConfig{
		Endpoint: cfg.Gateway.Endpoint,
		APIKey:   cfg.Gateway.APIKey,
		Timeout:  cfg.Gateway.Timeout,
	})
	gatewayClient := gateway.NewBreakerClient(httpClient, cfg.Gateway.BreakerMaxFailures, cfg.Gateway.BreakerResetTimeout)
	printSuccess(fmt.Sprintf("Gateway client for %s", cfg.Gateway.Endpoint))

	printStep("5/6", "Initializing services...")
	transactionStore := stores.CreateTransactionStore(database)
	ledger := services.NewLedgerWriter(transactionStore)

	retryCfg := gateway.DefaultRetryConfig()
	retryCfg.MaxAttempts = cfg.Retry.MaxAttempts
	retryCfg.BaseDelay = cfg.Retry.BaseDelay
	retryCfg.MaxJitter = cfg.Retry.MaxJitter

	paymentService := services.NewPaymentService(ledger, transactionStore, gatewayClient, retryCfg)
	printSuccess("Services initialized")

	printStep("6/6", "Setting up HTTP server...")
	paymentHandler := api.CreatePaymentHandler(paymentService, transactionStore, idempotencyStore)
	idempotency := middleware.NewIdempotencyMiddleware(idempotencyStore)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(idempotency.Handler)

	apiRouter.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")
	apiRouter.HandleFunc("/payments/purchase", paymentHandler.HandlePurchase).Methods("POST")
	apiRouter.HandleFunc("/payments/authorize", paymentHandler.HandleAuthorize).Methods("POST")
	apiRouter.HandleFunc("/payments/capture", paymentHandler.HandleCapture).Methods("POST")
	apiRouter.HandleFunc("/payments/refund", paymentHandler.HandleRefund).Methods("POST")
	apiRouter.HandleFunc("/payments/void", paymentHandler.HandleVoid).Methods("POST")
	apiRouter.HandleFunc("/payments/transactions/{id}", paymentHandler.HandleGetTransaction).Methods("GET")
	apiRouter.HandleFunc("/payments/transactions/{id}/history", paymentHandler.HandleGetTransactionHistory).Methods("GET")
	apiRouter.HandleFunc("/payments/idempotency/stats", paymentHandler.HandleIdempotencyStats).Methods("GET")

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	printSuccess("HTTP server configured")

	go func() {
		fmt.Printf("%s%sVelox listening on port %s%s\n", colorGreen, colorBold, cfg.Server.Port, colorReset)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			printError(fmt.Sprintf("Server failed to start: %v", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	printWarning("Shutting down Velox server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		printError(fmt.Sprintf("Server forced to shutdown: %v", err))
		os.Exit(1)
	}

	printSuccess("Velox server stopped gracefully")
}

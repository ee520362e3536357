package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/backoffice/backend/internal/application/billing"
	currencyapp "github.com/backoffice/backend/internal/application/currency"
	inventoryapp "github.com/backoffice/backend/internal/application/inventory"
	treasuryapp "github.com/backoffice/backend/internal/application/treasury"
	"github.com/backoffice/backend/internal/infrastructure/cache"
	"github.com/backoffice/backend/internal/infrastructure/config"
	"github.com/backoffice/backend/internal/infrastructure/logger"
	"github.com/backoffice/backend/internal/infrastructure/persistence"
	"github.com/backoffice/backend/internal/infrastructure/telemetry"
	"github.com/backoffice/backend/internal/interfaces/http/handler"
	"github.com/backoffice/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownGracePeriod = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()

	db, err := persistence.NewDatabaseWithOptions(&cfg.Database, persistence.Options{
		Logger:       logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond),
		TraceQueries: cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rateCache := newRateCache(cfg, log)

	// repositories
	stockLines := persistence.NewGormStockLineRepository(db.DB)
	moves := persistence.NewGormStockMoveRepository(db.DB)
	invoices := persistence.NewGormInvoiceRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)
	creditNotes := persistence.NewGormCreditNoteRepository(db.DB)
	payments := persistence.NewGormPaymentRepository(db.DB)
	bankAccounts := persistence.NewGormBankAccountRepository(db.DB)
	partners := persistence.NewGormPartnerRepository(db.DB)
	currencies := persistence.NewGormCurrencyRepository(db.DB)
	exchangeRates := persistence.NewGormExchangeRateRepository(db.DB)

	// transaction scopes
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	treasuryScope := persistence.NewGormTreasuryTransactionScope(db.DB)

	// application services
	rateService := currencyapp.NewRateService(currencies, exchangeRates, rateCache, log)
	moveService := inventoryapp.NewMoveService(inventoryScope, stockLines, moves, log)
	invoiceService := billingapp.NewInvoiceService(billingScope, invoices, rateService,
		decimal.NewFromFloat(cfg.Billing.IgtfRate), log)
	orderService := billingapp.NewOrderService(billingScope, orders, rateService, log)
	creditNoteService := billingapp.NewCreditNoteService(billingScope, creditNotes, log)
	paymentService := treasuryapp.NewPaymentService(treasuryScope, payments, rateService, log)
	bankAccountService := treasuryapp.NewBankAccountService(bankAccounts, log)
	statementService := treasuryapp.NewStatementService(invoices, payments, creditNotes, partners, log)

	engine := router.New(cfg, log, router.Handlers{
		Health:       handler.NewHealthHandler(db),
		Inventory:    handler.NewInventoryHandler(moveService),
		Invoices:     handler.NewInvoiceHandler(invoiceService),
		Orders:       handler.NewOrderHandler(orderService),
		CreditNotes:  handler.NewCreditNoteHandler(creditNoteService),
		Payments:     handler.NewPaymentHandler(paymentService),
		BankAccounts: handler.NewBankAccountHandler(bankAccountService),
		Currencies:   handler.NewCurrencyHandler(rateService),
		Statements:   handler.NewStatementHandler(statementService),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// newRateCache prefers Redis and falls back to the in-process cache when
// Redis is unreachable. Rate lookups tolerate staleness up to the TTL, so a
// degraded cache never blocks startup.
func newRateCache(cfg *config.Config, log *zap.Logger) currencyapp.RateCache {
	redisCache, err := cache.NewRedisRateCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Billing.RateCacheTTL)
	if err != nil {
		log.Warn("redis unavailable, using in-memory rate cache", zap.Error(err))
		return cache.NewInMemoryRateCache(cfg.Billing.RateCacheTTL)
	}
	return redisCache
}

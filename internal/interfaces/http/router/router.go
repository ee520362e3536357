package router

import (
	"github.com/backoffice/backend/internal/infrastructure/config"
	"github.com/backoffice/backend/internal/infrastructure/logger"
	"github.com/backoffice/backend/internal/interfaces/http/handler"
	"github.com/backoffice/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Handlers bundles the handlers the router mounts
type Handlers struct {
	Health       *handler.HealthHandler
	Inventory    *handler.InventoryHandler
	Invoices     *handler.InvoiceHandler
	Orders       *handler.OrderHandler
	CreditNotes  *handler.CreditNoteHandler
	Payments     *handler.PaymentHandler
	BankAccounts *handler.BankAccountHandler
	Currencies   *handler.CurrencyHandler
	Statements   *handler.StatementHandler
}

// New builds the gin engine with the full middleware chain and the
// /api/v1 route table. Health probes stay outside the auth fence.
func New(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(cfg.HTTP))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/health", h.Health.Health)
	engine.GET("/ready", h.Health.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer))

	inventory := api.Group("/inventory")
	{
		inventory.POST("/moves", h.Inventory.CreateMove)
		inventory.GET("/moves", h.Inventory.ListMoves)
		inventory.GET("/moves/:id", h.Inventory.GetMove)
		inventory.GET("/warehouses/:id/stock", h.Inventory.GetWarehouseStock)
		inventory.GET("/products/:id/stock", h.Inventory.GetProductStock)
	}

	invoices := api.Group("/invoices")
	{
		invoices.POST("", h.Invoices.CreateInvoice)
		invoices.GET("", h.Invoices.ListInvoices)
		invoices.GET("/by-code/:code", h.Invoices.GetInvoiceByCode)
		invoices.GET("/:id", h.Invoices.GetInvoice)
		invoices.POST("/:id/post", h.Invoices.PostInvoice)
		invoices.POST("/:id/void", h.Invoices.VoidInvoice)
		invoices.GET("/:id/credit-notes", h.CreditNotes.ListInvoiceCreditNotes)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.Orders.CreateOrder)
		orders.GET("", h.Orders.ListOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.POST("/:id/confirm", h.Orders.ConfirmOrder)
		orders.POST("/:id/cancel", h.Orders.CancelOrder)
	}

	creditNotes := api.Group("/credit-notes")
	{
		creditNotes.POST("", h.CreditNotes.CreateCreditNote)
		creditNotes.GET("/:id", h.CreditNotes.GetCreditNote)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", h.Payments.RegisterPayment)
		payments.GET("", h.Payments.ListPayments)
		payments.GET("/:id", h.Payments.GetPayment)
	}

	bankAccounts := api.Group("/bank-accounts")
	{
		bankAccounts.POST("", h.BankAccounts.CreateBankAccount)
		bankAccounts.GET("", h.BankAccounts.ListBankAccounts)
		bankAccounts.GET("/:id", h.BankAccounts.GetBankAccount)
		bankAccounts.POST("/:id/deactivate", h.BankAccounts.DeactivateBankAccount)
	}

	currencies := api.Group("/currencies")
	{
		currencies.GET("", h.Currencies.ListCurrencies)
		currencies.PUT("/:code", h.Currencies.EnsureCurrency)
		currencies.GET("/:code/rate", h.Currencies.LatestRate)
		currencies.GET("/:code/rates", h.Currencies.RateHistory)
		currencies.POST("/:code/rates", h.Currencies.RecordRate)
	}

	partners := api.Group("/partners")
	{
		partners.GET("/:id/invoices", h.Invoices.ListPartnerInvoices)
		partners.GET("/:id/credit-notes", h.CreditNotes.ListPartnerCreditNotes)
		partners.GET("/:id/payments", h.Payments.ListPartnerPayments)
		partners.GET("/:id/statement", h.Statements.GetAccountStatement)
	}

	return engine
}

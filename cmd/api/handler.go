package api

import (
	accountDelivery "invoiceai-backend/internal/account/delivery"
	accountRepo "invoiceai-backend/internal/account/repository"
	invoiceDelivery "invoiceai-backend/internal/invoice/delivery"
	invoiceRepo "invoiceai-backend/internal/invoice/repository"
	syncDelivery "invoiceai-backend/internal/sync/delivery"
	syncUsecasePkg "invoiceai-backend/internal/sync/usecase"
	"invoiceai-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	accountHandler *accountDelivery.AccountHandler
	syncHandler    *syncDelivery.SyncHandler
	invoiceHandler *invoiceDelivery.InvoiceHandler
	config         *config.Config
}

func NewHandler(debouncer *syncUsecasePkg.Debouncer, syncUc syncUsecasePkg.SyncUsecase, accountRepository accountRepo.AccountRepository, invoiceRepository invoiceRepo.InvoiceRepository, cfg *config.Config) *Handler {
	// Initialize runtime config for settings API
	InitRuntimeConfig(cfg.GeminiModel, cfg.GeminiApiKey)

	return &Handler{
		accountHandler: accountDelivery.NewAccountHandler(accountRepository),
		syncHandler:    syncDelivery.NewSyncHandler(debouncer, syncUc),
		invoiceHandler: invoiceDelivery.NewInvoiceHandler(invoiceRepository),
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.accountHandler, h.syncHandler, h.invoiceHandler)

	return r.Run(addr)
}

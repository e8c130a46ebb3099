package api

import (
	"net/http"

	accountDelivery "invoiceai-backend/internal/account/delivery"
	invoiceDelivery "invoiceai-backend/internal/invoice/delivery"
	syncDelivery "invoiceai-backend/internal/sync/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, accountHandler *accountDelivery.AccountHandler, syncHandler *syncDelivery.SyncHandler, invoiceHandler *invoiceDelivery.InvoiceHandler) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Provider push webhook. Must always answer 2xx; see handler.
		api.POST("/notifications/google", syncHandler.HandlePushNotification)

		// Mailbox accounts and their sync operations
		accounts := api.Group("/accounts")
		{
			accounts.POST("", accountHandler.RegisterAccount)
			accounts.GET("/:id", accountHandler.GetAccountByID)
			accounts.POST("/:id/watch", syncHandler.StartWatch)
			accounts.POST("/:id/sync", syncHandler.SyncNow)
		}

		// Ingested invoices
		invoices := api.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.ListInvoices)
			invoices.GET("/:id", invoiceHandler.GetInvoiceByID)
			invoices.PATCH("/:id/status", invoiceHandler.UpdateInvoiceStatus)
		}

		// Settings routes - Runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/extraction", GetExtractionSettings)
			settings.PUT("/extraction", UpdateExtractionSettings)
			settings.POST("/extraction/test", TestExtractionConnection)
		}
	}
}

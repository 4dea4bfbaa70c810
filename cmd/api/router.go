package api

import (
	"net/http"

	authdelivery "smartrfq/internal/auth/delivery"
	emailDelivery "smartrfq/internal/email/delivery"
	projectDelivery "smartrfq/internal/project/delivery"
	quotationDelivery "smartrfq/internal/quotation/delivery"
	rfqDelivery "smartrfq/internal/rfq/delivery"
	supplierDelivery "smartrfq/internal/supplier/delivery"
	"smartrfq/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Router builds the gin engine with every API route mounted.
func (h *Handler) Router() *gin.Engine {
	if h.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if h.cfg.OtelEnabled {
		r.Use(otelgin.Middleware("smartrfq"))
	}
	r.Use(corsMiddleware(h.cfg.AllowedOrigins))
	r.Use(h.http.Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})))
	if local, ok := h.files.(*storage.Local); ok {
		r.Static("/uploads", local.Root())
	}

	SetupRoutes(r, h)
	return r
}

// corsMiddleware allows credentials only for the configured origins. Without
// any, every origin may call the API but no credentials are shared.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := authdelivery.NewAuthHandler(h.authUsecase)
	projectHandler := projectDelivery.NewProjectHandler(h.projectUsecase)
	supplierHandler := supplierDelivery.NewSupplierHandler(h.supplierUsecase)
	rfqHandler := rfqDelivery.NewRFQHandler(h.rfqUsecase)
	emailHandler := emailDelivery.NewEmailHandler(h.emailUsecase)
	quotationHandler := quotationDelivery.NewQuotationHandler(h.quotationUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		protected := api.Group("")
		protected.Use(authdelivery.AuthMiddleware(h.authUsecase, h.http.AuthFailures))

		// User mirror
		protected.GET("/users/me", authHandler.Me)
		protected.POST("/users/sync", authHandler.SyncUser)

		// FCM routes
		fcm := protected.Group("/fcm")
		{
			fcm.POST("/register", authHandler.RegisterDevice)
			fcm.DELETE("/:token", authHandler.UnregisterDevice)
		}

		// Project routes
		projects := protected.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)

			projects.GET("/:id/suppliers", supplierHandler.ListSuppliers)

			projects.GET("/:id/items", rfqHandler.ListItems)
			projects.POST("/:id/items", rfqHandler.CreateItem)
			projects.POST("/:id/items/bulk", rfqHandler.BulkCreateItems)
			projects.POST("/:id/items/import", rfqHandler.ImportItems)

			projects.GET("/:id/files", rfqHandler.ListFiles)
			projects.POST("/:id/files", rfqHandler.UploadFile)

			projects.GET("/:id/conversations", emailHandler.ListConversations)
			projects.POST("/:id/conversations", emailHandler.StartConversation)

			projects.GET("/:id/quotations", quotationHandler.ListQuotations)
			projects.POST("/:id/quotations", quotationHandler.CreateQuotation)
			projects.POST("/:id/quotations/import-image", quotationHandler.ImportImage)
		}

		// Supplier routes
		suppliers := protected.Group("/suppliers")
		{
			suppliers.GET("", supplierHandler.ListSuppliers)
			suppliers.POST("", supplierHandler.CreateSupplier)
			suppliers.PATCH("/:id", supplierHandler.UpdateSupplier)
			suppliers.DELETE("/:id", supplierHandler.DeleteSupplier)
		}

		// Item routes
		items := protected.Group("/items")
		{
			items.PATCH("/:id", rfqHandler.UpdateItem)
			items.DELETE("/:id", rfqHandler.DeleteItem)
			items.POST("/batch-delete", rfqHandler.BatchDeleteItems)
		}

		protected.DELETE("/files/:id", rfqHandler.DeleteFile)

		// Conversation routes
		conversations := protected.Group("/conversations")
		{
			conversations.GET("/:id/emails", emailHandler.ListEmails)
			conversations.POST("/:id/emails", emailHandler.SendEmail)
			conversations.PATCH("/:id/read", emailHandler.MarkRead)
			conversations.POST("/:id/extract", quotationHandler.ExtractFromConversation)
		}

		protected.GET("/quotations/history", quotationHandler.History)
	}
}

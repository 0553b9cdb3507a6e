// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stocksplit/stocksplit-backend/internal/config"
	"github.com/stocksplit/stocksplit-backend/internal/handlers"
	"github.com/stocksplit/stocksplit-backend/internal/middleware"
	"github.com/stocksplit/stocksplit-backend/internal/services"
	"github.com/stocksplit/stocksplit-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	authorizationService := services.NewAuthorizationService(db)

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db, authorizationService)
	customerService := services.NewCustomerService(db, authorizationService)
	settlementService := services.NewSettlementService(db, authorizationService, customerService, notificationService)
	approvalService := services.NewApprovalService(db, authorizationService)
	financeService := services.NewFinanceService(db, authorizationService, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, approvalService, authorizationService)
	checkoutHandler := handlers.NewCheckoutHandler(settlementService)
	approvalHandler := handlers.NewApprovalHandler(approvalService)
	financeHandler := handlers.NewFinanceHandler(financeService, storageService)
	customerHandler := handlers.NewCustomerHandler(customerService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Product routes
		products := v1.Group("/products")
		products.Use(middleware.AuthRequired())
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/lookup", productHandler.LookupProduct)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", productHandler.CreateProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
		}

		// Checkout
		v1.POST("/checkout", middleware.AuthRequired(), checkoutHandler.Checkout)

		// Change request workflow
		requests := v1.Group("/change-requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.POST("", approvalHandler.SubmitRequest)
			requests.GET("/mine", approvalHandler.GetMyRequests)

			ownerOnly := requests.Group("")
			ownerOnly.Use(middleware.OwnerRequired())
			{
				ownerOnly.GET("/pending", approvalHandler.GetPendingRequests)
				ownerOnly.PUT("/:id/approve", approvalHandler.ApproveRequest)
				ownerOnly.PUT("/:id/reject", approvalHandler.RejectRequest)
				ownerOnly.POST("/approve-all", approvalHandler.ApproveAllRequests)
				ownerOnly.POST("/reject-all", approvalHandler.RejectAllRequests)
			}
		}

		// Finance routes
		finance := v1.Group("/finance")
		finance.Use(middleware.AuthRequired())
		{
			finance.GET("/balance/:investorID", financeHandler.GetInvestorBalance)
			finance.GET("/owner-income", middleware.OwnerRequired(), financeHandler.GetOwnerIncome)
		}

		// Payout routes
		payouts := v1.Group("/payouts")
		payouts.Use(middleware.AuthRequired())
		{
			payouts.GET("", financeHandler.GetPayouts)
			payouts.POST("", middleware.OwnerRequired(), middleware.UploadRateLimit(), financeHandler.RecordPayout)
		}

		// Customer routes
		customers := v1.Group("/customers")
		customers.Use(middleware.AuthRequired())
		{
			customers.GET("", customerHandler.GetCustomers)
			customers.GET("/:id", customerHandler.GetCustomerProfile)
		}

		// Dashboard
		v1.GET("/dashboard", middleware.AuthRequired(), financeHandler.GetDashboard)
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}

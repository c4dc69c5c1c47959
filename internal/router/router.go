// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/config"
	"github.com/vendora/marketplace-backend/internal/handlers"
	"github.com/vendora/marketplace-backend/internal/middleware"
	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)

	catalogService := services.NewCatalogService(db)
	categoryService := services.NewCategoryService(db)
	sellerService := services.NewSellerService(db, cfg)
	payoutService := services.NewPayoutService(db, cfg)
	reviewService := services.NewReviewService(db)
	subscriptionService := services.NewSubscriptionService(db)
	gamificationService := services.NewGamificationService(db)

	// Initialize handlers
	serviceHandler := handlers.NewServiceHandler(catalogService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	sellerHandler := handlers.NewSellerHandler(sellerService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	gamificationHandler := handlers.NewGamificationHandler(gamificationService)
	uploadHandler := handlers.NewUploadHandler(storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	if cfg.RateLimit.Enabled {
		r.Use(middleware.GeneralRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}
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
		// Category routes are registered before /services/:id so the static
		// /services/categories segment wins.
		categories := v1.Group("/services/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/tree", categoryHandler.GetCategoryTree)
			categories.GET("/slug/:slug", categoryHandler.GetCategoryBySlug)
			categories.GET("/:id", categoryHandler.GetCategory)

			protected := categories.Group("")
			protected.Use(middleware.AuthRequired(), middleware.StaffRequired())
			{
				protected.POST("", categoryHandler.CreateCategory)
				protected.PATCH("/:id", categoryHandler.UpdateCategory)
				protected.DELETE("/:id", middleware.AdminRequired(), categoryHandler.DeleteCategory)
			}
		}

		// Service catalog routes
		servicesGroup := v1.Group("/services")
		{
			servicesGroup.GET("", serviceHandler.ListServices)
			servicesGroup.GET("/slug/:slug", serviceHandler.GetServiceBySlug)
			servicesGroup.GET("/:id", serviceHandler.GetService)
			servicesGroup.GET("/:id/reviews", middleware.OptionalAuth(), reviewHandler.ListServiceReviews)
			servicesGroup.POST("/:id/reviews", middleware.AuthRequired(), reviewHandler.CreateReview)

			protected := servicesGroup.Group("")
			protected.Use(middleware.AuthRequired(), middleware.StaffRequired())
			{
				protected.POST("", serviceHandler.CreateService)
				protected.PATCH("/:id", serviceHandler.UpdateService)
				protected.DELETE("/:id", middleware.AdminRequired(), serviceHandler.DeleteService)
			}
		}

		// Review moderation
		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired(), middleware.StaffRequired())
		{
			reviews.PATCH("/:id/status", reviewHandler.ModerateReview)
		}

		// Seller routes
		sellers := v1.Group("/sellers")
		{
			sellers.GET("/:id", sellerHandler.GetSeller)
			sellers.GET("", middleware.AuthRequired(), middleware.StaffRequired(), sellerHandler.ListSellers)

			protected := sellers.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", sellerHandler.RegisterSeller)
				protected.GET("/me", sellerHandler.GetMySeller)
			}

			admin := sellers.Group("")
			admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				admin.PATCH("/:id/status", sellerHandler.UpdateSellerStatus)
				admin.GET("/:id/payouts", payoutHandler.ListSellerPayouts)
			}
		}

		// Payout routes
		payouts := v1.Group("/payouts")
		payouts.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			payouts.POST("", payoutHandler.CreatePayout)
			payouts.GET("/:id", payoutHandler.GetPayout)
			payouts.PATCH("/:id/status", payoutHandler.UpdatePayoutStatus)
			payouts.POST("/:id/process", payoutHandler.ProcessPayout)
		}

		// Subscription routes
		subscriptions := v1.Group("/subscriptions")
		{
			subscriptions.GET("/plans", subscriptionHandler.ListPlans)

			planAdmin := subscriptions.Group("/plans")
			planAdmin.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				planAdmin.POST("", subscriptionHandler.CreatePlan)
				planAdmin.PATCH("/:id", subscriptionHandler.UpdatePlan)
			}

			protected := subscriptions.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", subscriptionHandler.Subscribe)
				protected.DELETE("/current", subscriptionHandler.CancelCurrent)
				protected.GET("/credits", subscriptionHandler.GetCredits)
				protected.POST("/credits/spend", subscriptionHandler.SpendCredits)
			}
		}

		// Badge routes
		badges := v1.Group("/badges")
		{
			badges.GET("", gamificationHandler.ListBadges)

			admin := badges.Group("")
			admin.Use(middleware.AuthRequired(), middleware.StaffRequired())
			{
				admin.POST("", gamificationHandler.CreateBadge)
				admin.PATCH("/:id", gamificationHandler.UpdateBadge)
				admin.POST("/:id/award", gamificationHandler.AwardBadge)
			}
		}

		// User badge listing
		users := v1.Group("/users")
		{
			users.GET("/:id/badges", gamificationHandler.ListUserBadges)
		}

		// Upload routes
		uploads := v1.Group("/uploads")
		uploads.Use(middleware.AuthRequired(), middleware.StaffRequired(), middleware.UploadRateLimit())
		{
			uploads.POST("/images", uploadHandler.UploadImage)
		}
	}

	return r
}

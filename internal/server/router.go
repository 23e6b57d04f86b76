package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/wishlink-backend/internal/handlers"
	"github.com/yungbote/wishlink-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	WishlistHandler *handlers.WishlistHandler
	ProductHandler  *handlers.ProductHandler
	UploadHandler   *handlers.UploadHandler
	RealtimeHandler *handlers.RealtimeHandler
	AllowOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/health", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	protected.GET("/auth/me", cfg.AuthHandler.Me)
	protected.PUT("/auth/profile", cfg.AuthHandler.UpdateProfile)

	// Wishlists
	protected.GET("/wishlists", cfg.WishlistHandler.List)
	protected.POST("/wishlists", cfg.WishlistHandler.Create)
	protected.GET("/wishlists/:id", cfg.WishlistHandler.Get)
	protected.PUT("/wishlists/:id", cfg.WishlistHandler.Update)
	protected.DELETE("/wishlists/:id", cfg.WishlistHandler.Delete)
	protected.POST("/wishlists/:id/invite", cfg.WishlistHandler.GenerateInvite)
	protected.POST("/wishlists/join/:inviteCode", cfg.WishlistHandler.Join)

	// Products
	protected.GET("/products/wishlist/:wishlistId", cfg.ProductHandler.ListByWishlist)
	protected.POST("/products", cfg.ProductHandler.Create)
	protected.PUT("/products/:id", cfg.ProductHandler.Update)
	protected.DELETE("/products/:id", cfg.ProductHandler.Delete)
	protected.POST("/products/:id/comments", cfg.ProductHandler.AddComment)
	protected.POST("/products/:id/reactions", cfg.ProductHandler.AddReaction)
	protected.DELETE("/products/:id/reactions", cfg.ProductHandler.RemoveReaction)

	// Uploads
	protected.POST("/upload/avatar", cfg.UploadHandler.UploadAvatar)
	protected.POST("/upload/product-image", cfg.UploadHandler.UploadProductImage)
	protected.DELETE("/upload/image", cfg.UploadHandler.DeleteImage)

	// Realtime
	protected.GET("/realtime/stream", cfg.RealtimeHandler.Stream)
	protected.POST("/realtime/subscribe", cfg.RealtimeHandler.Subscribe)
	protected.POST("/realtime/unsubscribe", cfg.RealtimeHandler.Unsubscribe)

	return router
}

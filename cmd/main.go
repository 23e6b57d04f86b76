package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/wishlink-backend/internal/db"
	"github.com/yungbote/wishlink-backend/internal/handlers"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/middleware"
	"github.com/yungbote/wishlink-backend/internal/repos"
	"github.com/yungbote/wishlink-backend/internal/server"
	"github.com/yungbote/wishlink-backend/internal/services"
	"github.com/yungbote/wishlink-backend/internal/sse"
	"github.com/yungbote/wishlink-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	wishlistRepo := repos.NewWishlistRepo(thePG, log)
	productRepo := repos.NewProductRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)
	var sseBus services.SSEBus
	if bus, err := services.NewRedisSSEBus(log); err != nil {
		log.Warn("Could not init Redis SSE bus; realtime events stay in-process", "error", err)
	} else {
		sseBus = bus
		go func() {
			if err := bus.StartForwarder(context.Background(), sseHub.Broadcast); err != nil {
				log.Warn("SSE bus forwarder stopped", "error", err)
			}
		}()
	}

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService; image uploads disabled", "error", err)
	}
	var avatarService services.AvatarService
	if bucketService != nil {
		avatarService, err = services.NewAvatarService(log, bucketService)
		if err != nil {
			log.Warn("Could not init AvatarService; generated avatars disabled", "error", err)
		}
	}
	notifier := services.NewNotifier(log, sseHub, sseBus)
	authService := services.NewAuthService(
		thePG,
		log,
		userRepo,
		userTokenRepo,
		avatarService,
		bucketService,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	wishlistService := services.NewWishlistService(thePG, log, wishlistRepo, productRepo, bucketService)
	productService := services.NewProductService(thePG, log, wishlistRepo, productRepo, bucketService, notifier)
	uploadService := services.NewUploadService(log, userRepo, bucketService, avatarService)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	wishlistHandler := handlers.NewWishlistHandler(log, wishlistService)
	productHandler := handlers.NewProductHandler(log, productService)
	uploadHandler := handlers.NewUploadHandler(log, uploadService)
	realtimeHandler := handlers.NewRealtimeHandler(log, sseHub, wishlistService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		WishlistHandler: wishlistHandler,
		ProductHandler:  productHandler,
		UploadHandler:   uploadHandler,
		RealtimeHandler: realtimeHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}

package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/bkhome-server/config"
	"github.com/vnkhanh/bkhome-server/controllers"
	"github.com/vnkhanh/bkhome-server/middleware"
	"github.com/vnkhanh/bkhome-server/routes"
	"github.com/vnkhanh/bkhome-server/services"
	"github.com/vnkhanh/bkhome-server/storage"
	"github.com/vnkhanh/bkhome-server/utils"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.AppName)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// Connect DB + AutoMigrate
	db, err := config.ConnectDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("init storage", zap.Error(err))
	}

	txOpts := services.TxOptions{MaxWait: cfg.Tx.MaxWait, Timeout: cfg.Tx.Timeout}
	users := services.NewUserService(db, store, logger)
	rooms := services.NewRoomService(db, store, users, txOpts, logger)
	reviews := services.NewReviewService(db, store, users, txOpts, logger)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger.Named("http")))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: !allOrigins(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
		AllowWildcard:    true,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Fatal("set trusted proxies", zap.Error(err))
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst, 5*time.Minute)
	routes.SetupRoutes(r, cfg.Prefix, routes.Handlers{
		Rooms:   controllers.NewRoomController(rooms, cfg.UploadMaxSize, logger),
		Reviews: controllers.NewReviewController(reviews, cfg.UploadMaxSize, logger),
		Users:   controllers.NewUserController(users, cfg.UploadMaxSize, logger),
		Export:  controllers.NewExportController(rooms, logger),
		Health:  controllers.NewHealthController(db),
		Upload:  middleware.RateLimitByIP(limiter),
	})

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("prefix", cfg.Prefix))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func allOrigins(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

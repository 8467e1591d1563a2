package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/yeremiapane/demeter/config"
	"github.com/yeremiapane/demeter/database"
	"github.com/yeremiapane/demeter/kds"
	"github.com/yeremiapane/demeter/locker"
	"github.com/yeremiapane/demeter/queue"
	"github.com/yeremiapane/demeter/router"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == gin.ReleaseMode || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := database.Open(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if cfg.BootstrapAdminID != "" {
		staff := services.NewStaffService(db)
		if err := staff.EnsureAdmin(context.Background(), cfg.BootstrapAdminID, cfg.BootstrapAdminSecret); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed admin: %v", err)
		}
	}

	var locks locker.Locker = locker.NewLocal()
	if cfg.RedisAddr != "" {
		if client := locker.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); client != nil {
			defer client.Close()
			locks = locker.NewRedis(client, "demeter:", cfg.DeskLockTTL)
			utils.InfoLogger.Printf("Desk locks on redis %s", cfg.RedisAddr)
		} else {
			utils.ErrorLogger.Println("Redis unreachable, using in-process desk locks")
		}
	}

	hub := kds.NewHub()

	var kitchen services.Notifier
	if cfg.AMQPURL != "" {
		publisher, err := queue.NewPublisher(cfg.AMQPURL, cfg.KitchenQueue)
		if err != nil {
			utils.ErrorLogger.Printf("Kitchen queue disabled: %v", err)
		} else {
			defer publisher.Close()
			kitchen = publisher
			utils.InfoLogger.Printf("Publishing kitchen tickets to %s", cfg.KitchenQueue)
		}
	}

	clock := clockwork.NewRealClock()

	monitor := services.NewOccupancyMonitor(db, services.Notifiers{hub, kitchen}, clock)
	monitor.Start()
	defer monitor.Stop()

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	r := router.SetupRouter(router.Options{
		DB:                 db,
		Hub:                hub,
		Locks:              locks,
		Notifier:           kitchen,
		Tokens:             tokens,
		Clock:              clock,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimit:          cfg.RateLimitPerSecond,
		RateBurst:          cfg.RateLimitBurst,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		DeskLockWait:       cfg.DeskLockWait,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}
}

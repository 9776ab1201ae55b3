package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/config"
	redisdb "github.com/joy095/bookmarathon/config/redis"
	"github.com/joy095/bookmarathon/logger"
	middleware "github.com/joy095/bookmarathon/middlewares"
	"github.com/joy095/bookmarathon/middlewares/cors"
	"github.com/joy095/bookmarathon/routes"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	cfg := config.Load()
	defer redisdb.CloseRedis()

	store := bookstore.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamToken, cfg.UpstreamTimeout)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.CorsMiddleware())

	routes.RegisterCatalogRoutes(r, store)
	routes.RegisterUserRoutes(r, store)
	routes.RegisterBookingRoutes(r, store)
	routes.RegisterReturnRoutes(r, store)
	routes.RegisterVerifyRoutes(r, store, cfg.AdminAccessHash)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok from booking gateway"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.InfoLogger.Infof("Booking gateway listening on :%s (upstream %s)", cfg.Port, cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Errorf("Server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.InfoLogger.Info("Shutting down booking gateway...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorLogger.Errorf("Forced shutdown: %v", err)
	}
	logger.InfoLogger.Info("Booking gateway stopped")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"curator-cache/internal/cache"
	"curator-cache/internal/common/logging"
	"curator-cache/internal/config"
	"curator-cache/internal/handlers"
	"curator-cache/internal/middleware"
	"curator-cache/internal/redis"
	"curator-cache/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.InitGlobalLogger()
	defer logging.MustSync()

	manager, err := cache.NewManager(cache.ManagerConfig{
		Redis: &redis.Config{
			Address:    cfg.RedisAddress,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDBInt(),
			PoolSize:   cfg.RedisPoolSizeInt(),
			Namespace:  cfg.CacheNamespace,
			DefaultTTL: cfg.CacheDefaultTTL,
		},
		LocalMaxSize: cfg.LocalCacheMaxSize,
		DefaultTTL:   cfg.CacheDefaultTTL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache manager: %v", err)
	}
	defer manager.Close()

	h := handlers.New(manager)

	router := mux.NewRouter()
	router.Use(middleware.Logging)

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/cache").Subrouter()
	api.HandleFunc("/stats", h.GetCacheStats).Methods("GET")
	api.HandleFunc("/stats/reset", h.ResetCacheStats).Methods("POST")
	api.HandleFunc("/namespace/{namespace}", h.ClearNamespace).Methods("DELETE")
	api.HandleFunc("/keys", h.DeleteKeys).Methods("DELETE")

	srv := server.New(router, cfg.Port)
	serverErrs := srv.Start()

	logging.Info("Cache service started",
		logging.String("port", cfg.Port),
		logging.Bool("degraded", manager.Degraded()),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrs:
		logging.Error("Server failed", err)
	case sig := <-quit:
		logging.Info("Shutting down", logging.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", err)
	}
}

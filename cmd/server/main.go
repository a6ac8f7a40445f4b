package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nypblockchain/pythongame/internal/api"
	"github.com/nypblockchain/pythongame/internal/auth"
	"github.com/nypblockchain/pythongame/internal/cache"
	"github.com/nypblockchain/pythongame/internal/config"
	"github.com/nypblockchain/pythongame/internal/database"
	"github.com/nypblockchain/pythongame/internal/rooms"
	"github.com/nypblockchain/pythongame/internal/ws"
)

// cleanupInterval is how often finished rooms are swept.
const cleanupInterval = time.Minute

func main() {
	cfg := config.Load()

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			log.WithError(err).Fatal("database connection failed")
		}
		defer database.Close()
	} else {
		log.Warn("DATABASE_URL not set, running without persistence")
	}
	if cfg.RedisURL != "" {
		if err := cache.Connect(ctx, cfg.RedisURL); err != nil {
			log.WithError(err).Fatal("redis connection failed")
		}
		defer cache.Close()
	} else {
		log.Warn("REDIS_URL not set, running without action log")
	}

	authSvc, err := auth.NewService(cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("auth setup failed")
	}

	registry := rooms.NewRegistry(nil)
	hub := ws.NewHub(registry, authSvc, cfg.BotEnabled, time.Duration(cfg.BotDelayMs)*time.Millisecond)

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				registry.CleanupFinished()
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	api.NewHandler(authSvc, registry).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("server shutdown error")
		}
	}()

	log.WithField("addr", cfg.Addr).Info("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server exited")
	}
	log.Info("server stopped")
}

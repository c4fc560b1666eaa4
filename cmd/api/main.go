package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"printworks/internal/config"
	"printworks/internal/db"
	"printworks/internal/migrations"
	"printworks/internal/pricing"
	"printworks/internal/seed"
	"printworks/internal/server"
	"printworks/internal/store"
)

func main() {
	cfg := config.Load()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatalf("DATABASE_URL not set. Please export DATABASE_URL before running.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer pool.Close()
	// Verify connectivity proactively
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	if err := migrations.Up(sqlDB); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if cfg.SeedOnBoot {
		stats, err := seed.Run(ctx, pool, pricing.NewEngine())
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		if stats.Presets > 0 || stats.Products > 0 {
			log.Printf("seeded %d presets, %d products", stats.Presets, stats.Products)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(store.New(pool)),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("api listening on :%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Println("server error:", err)
			os.Exit(1)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Println("shutdown error:", err)
		}
	}
}

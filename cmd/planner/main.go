// Package main provides the entry point for the cultivation planner service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/urban-gardening-assistant/cultivation-planner/config"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/httpapi"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/planner"
	"github.com/urban-gardening-assistant/cultivation-planner/internal/utils/logger"
)

const (
	shutdownTimeout = 30 * time.Second
	defaultAddr     = ":8080"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Error(log, "failed to initialize database", err)
		os.Exit(1)
	}

	store, err := planner.NewResultStore(db)
	if err != nil {
		logger.Error(log, "failed to initialize result store", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(cfg.Optimizer, store)
	server := &http.Server{
		Addr:    addr(),
		Handler: router,
	}

	go func() {
		logger.Info(log, "cultivation planner listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(log, "server failed", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(log, server)
}

func initDatabase(cfg *config.ServiceConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening result database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	return db, nil
}

func addr() string {
	if a := os.Getenv("PLANNER_ADDR"); a != "" {
		return a
	}
	return defaultAddr
}

func waitForShutdown(log *zap.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info(log, "shutting down cultivation planner")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error(log, "graceful shutdown failed", err)
	}
}

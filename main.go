package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"passbi-cache/config"
	"passbi-cache/internal/services/api"
	"passbi-cache/internal/services/cache"
	"passbi-cache/internal/services/journal"
	"passbi-cache/internal/services/network"
	"passbi-cache/internal/services/store"
	"passbi-cache/internal/utils"
	"passbi-cache/internal/web"
)

func main() {
	cfg := config.LoadConfig()
	logger := utils.NewLogger(cfg.LogDebug)

	logger.Info("=== PassBi cache service starting ===")
	cfg.PrintConfig()

	// durable store: Redis when reachable, in-memory otherwise
	var durable store.DurableStore
	redisStore, err := store.NewRedisStore(cfg, logger)
	if err != nil {
		logger.Warnf("Redis unavailable, falling back to in-memory store: %v", err)
		durable = store.NewMemoryStore()
	} else {
		logger.Info("Redis store connected")
		durable = redisStore
	}
	defer durable.Close()

	apiClient := api.NewPassBiClient(cfg, logger)
	monitor := network.NewHTTPMonitor(cfg, logger)

	operatorCache := cache.NewOperatorCache(cfg, logger, durable, apiClient, monitor)
	userCache := cache.NewUserProfileCache(cfg, logger, durable, apiClient, monitor)

	// warm both caches from the durable store before serving
	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	if err := operatorCache.Initialize(initCtx); err != nil {
		logger.Warnf("operator cache initialization: %v", err)
	}
	if err := userCache.Initialize(initCtx); err != nil {
		logger.Warnf("user cache initialization: %v", err)
	}
	cancelInit()

	// optional refresh audit journal
	var refreshJournal cache.RefreshJournal
	esJournal := journal.NewElasticsearchJournal(cfg, logger)
	if esJournal != nil {
		if err := esJournal.TestConnection(); err != nil {
			logger.Warnf("Elasticsearch unreachable, refresh journal disabled: %v", err)
		} else {
			logger.Info("Elasticsearch refresh journal enabled")
			refreshJournal = esJournal
		}
	}

	refreshManager := cache.NewRefreshManager(cfg, logger, operatorCache, refreshJournal)
	refreshManager.Start()

	server := web.NewFiberServer(cfg, logger, operatorCache, userCache, refreshManager, apiClient)

	go func() {
		if err := server.Start(cfg.WebPort); err != nil {
			logger.Errorf("web server stopped: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("=== PassBi cache service running ===")
	logger.Info("press Ctrl+C to stop")

	<-sigChan

	logger.Info("=== shutdown signal received ===")

	refreshManager.Stop()
	if err := server.Stop(); err != nil {
		logger.Errorf("web server shutdown: %v", err)
	}

	logger.Info("=== PassBi cache service stopped ===")
}

// Package main implements the phishguard email risk assessment service.
// It exposes a REST API that scores parsed email metadata through a set
// of detector modules, DNS authentication lookups and two aggregation
// schemes.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/analysis"
	"github.com/mail-cci/phishguard/internal/api"
	"github.com/mail-cci/phishguard/internal/config"
	"github.com/mail-cci/phishguard/internal/resolver"
	"github.com/mail-cci/phishguard/internal/scoring"
	"github.com/mail-cci/phishguard/internal/storage"
	"github.com/mail-cci/phishguard/pkg/logger"
)

const (
	AppVersion = "1.0.0"
	AppName    = "Phishguard"
)

// Global application state
var (
	cfg         *config.Config
	cfgMutex    sync.RWMutex
	ctx, cancel = context.WithCancel(context.Background())
	mainLog     *zap.Logger

	// Module-specific loggers for better log organization
	dnsLog *zap.Logger
	apiLog *zap.Logger

	pool       *resolver.Pool
	analyzer   *analysis.Analyzer
	engine     *scoring.Engine
	store      *storage.Store
	apiHandler *api.Handler
	httpServer *http.Server

	wg sync.WaitGroup
)

func main() {
	if err := initConfig(); err != nil {
		fmt.Printf("Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}

	if err := initLoggers(); err != nil {
		fmt.Printf("Failed to initialize loggers: %v\n", err)
		os.Exit(1)
	}
	defer syncLoggers()

	zap.ReplaceGlobals(mainLog)

	mainLog.Info("Initializing assessment modules")
	if err := initModules(); err != nil {
		mainLog.Fatal("Failed to initialize modules", zap.Error(err))
	}

	startHTTPServer()

	mainLog.Info("Application started successfully",
		zap.String("name", AppName),
		zap.String("version", AppVersion),
		zap.String("environment", cfg.Env),
		zap.String("api_port", cfg.ApiPort),
	)

	handleShutdown()
}

// initConfig loads and validates the application configuration
func initConfig() error {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return validateConfig(cfg)
}

// initLoggers creates and configures all application loggers
func initLoggers() error {
	var err error

	mainLog, err = createLogger("main.log")
	if err != nil {
		return fmt.Errorf("creating main logger: %w", err)
	}

	dnsLog, err = createLogger("dns.log")
	if err != nil {
		return fmt.Errorf("creating DNS logger: %w", err)
	}

	apiLog, err = createLogger("api.log")
	if err != nil {
		return fmt.Errorf("creating API logger: %w", err)
	}

	return nil
}

// createLogger creates a logger with standard configuration for the given filename
func createLogger(filename string) (*zap.Logger, error) {
	logConfig := logger.LogConfig{
		Level:         cfg.LogLevel,
		FilePath:      cfg.LogPath + "/" + filename,
		MaxSizeMB:     100,
		MaxBackups:    7,
		MaxAgeDays:    30,
		ConsoleOutput: cfg.Env == "development",
	}

	return logger.New(logConfig)
}

// syncLoggers ensures all log buffers are flushed
func syncLoggers() {
	loggers := []*zap.Logger{mainLog, dnsLog, apiLog}
	for _, l := range loggers {
		if l != nil {
			_ = l.Sync()
		}
	}
}

// initModules wires the resolver pool, analyzer, aggregation engine and
// the optional history store.
func initModules() error {
	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	var redisClient *redis.Client
	if cfg.DNS.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.DNS.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing redis URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			mainLog.Warn("Redis unreachable, DNS cache runs local-only", zap.Error(err))
			redisClient = nil
		}
	}

	cache := resolver.NewCache(redisClient, cfg.DNS.RedisPrefix, cfg.DNS.CacheTTL)
	res := resolver.New(cfg.DNS, cache, dnsLog)
	pool = resolver.NewPool(res, cfg.DNS.Workers)
	pool.Start()

	analyzer = analysis.New(rules, cfg.Timing, pool, mainLog)
	if cfg.DNS.DeepSPF {
		analyzer.UseDeepSPF(res)
	}
	engine = scoring.NewEngine(cfg.Scoring, nil, mainLog)

	if cfg.DatabaseURL != "" {
		db, err := storage.New(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		store = storage.NewStore(db)
	} else {
		mainLog.Warn("No database configured, assessment history disabled")
	}

	return nil
}

// startHTTPServer launches the REST API in a background goroutine.
func startHTTPServer() {
	api.InitLogger(apiLog)

	apiHandler = api.NewHandler(analyzer, engine, store, apiLog)
	router := api.NewServer(cfg, apiHandler)

	httpServer = &http.Server{
		Addr:    ":" + cfg.ApiPort,
		Handler: router,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		apiLog.Info("HTTP API server starting",
			zap.String("port", cfg.ApiPort),
			zap.String("mode", cfg.Env),
		)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			apiLog.Error("HTTP API server failed",
				zap.Error(err),
				zap.String("port", cfg.ApiPort),
			)
		}
	}()
}

// handleShutdown manages graceful application shutdown
func handleShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case sig := <-sigChan:
			mainLog.Info("Signal received", zap.String("signal", sig.String()))

			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				mainLog.Info("Initiating graceful shutdown")
				gracefulShutdown()
				return

			case syscall.SIGHUP:
				mainLog.Info("Reloading configuration")
				if err := reloadConfig(); err != nil {
					mainLog.Error("Failed to reload configuration", zap.Error(err))
				}
			}
		case <-ctx.Done():
			mainLog.Info("Context cancelled, shutting down")
			return
		}
	}
}

// gracefulShutdown performs a clean shutdown of all services
func gracefulShutdown() {
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			mainLog.Warn("HTTP server shutdown error", zap.Error(err))
		}
	}
	if pool != nil {
		pool.Stop()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		mainLog.Info("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		mainLog.Warn("Shutdown timeout exceeded, forcing exit")
	}
}

// reloadConfig handles configuration reload (SIGHUP). The rule tables and
// scoring thresholds can change at runtime; loggers, the resolver pool
// and the HTTP listener keep their original configuration until restart.
func reloadConfig() error {
	newCfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load new configuration: %w", err)
	}
	if err := validateConfig(newCfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	rules, err := config.LoadRules(newCfg.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	cfgMutex.Lock()
	cfg = newCfg
	cfgMutex.Unlock()

	analyzer = analysis.New(rules, newCfg.Timing, pool, mainLog)
	engine = scoring.NewEngine(newCfg.Scoring, nil, mainLog)
	if apiHandler != nil {
		apiHandler.Swap(analyzer, engine)
	}

	mainLog.Info("Configuration reload completed successfully",
		zap.String("environment", newCfg.Env),
		zap.String("log_level", newCfg.LogLevel),
		zap.Float64("phishing_threshold", newCfg.Scoring.PhishingThreshold),
	)

	return nil
}

// validateConfig performs basic validation on the configuration
func validateConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	if cfg.ApiPort == "" {
		return fmt.Errorf("API port is required")
	}
	if cfg.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	if cfg.LogPath == "" {
		return fmt.Errorf("log path is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if cfg.Scoring.SuspiciousThreshold >= cfg.Scoring.PhishingThreshold {
		return fmt.Errorf("suspicious threshold must be below phishing threshold")
	}

	return nil
}

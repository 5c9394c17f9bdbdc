package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/freshspot/jobharvest/internal/config"
	"github.com/freshspot/jobharvest/internal/imageresolver"
	"github.com/freshspot/jobharvest/internal/ledger"
	"github.com/freshspot/jobharvest/internal/llm"
	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/ratelimit"
	"github.com/freshspot/jobharvest/internal/repository"
	"github.com/freshspot/jobharvest/internal/scheduler"
	"github.com/freshspot/jobharvest/internal/service"
	"github.com/freshspot/jobharvest/internal/source"
	"github.com/freshspot/jobharvest/internal/source/remoteok"
	"github.com/freshspot/jobharvest/internal/source/wpfeed"
	"github.com/freshspot/jobharvest/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "jobharvest-daily",
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	configPath := flag.String("config", "", "Path to config file")
	once := flag.Bool("once", false, "Run one daily cycle and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	jobRepo := repository.NewJobRepository(db)
	runRepo := repository.NewRunRepository(db)

	objectStorage, err := storage.NewStorage(&storage.Config{
		Backend:   cfg.Storage.Backend,
		LocalDir:  cfg.Storage.LocalDir,
		PublicURL: cfg.Storage.PublicURL,
		S3: storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
		},
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	resolver, err := imageresolver.New(objectStorage, "")
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize image resolver")
	}

	limiter := ratelimit.New(ratelimit.Limits{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		RequestsPerDay:    cfg.RateLimit.RequestsPerDay,
		TokensPerMinute:   cfg.RateLimit.TokensPerMinute,
		TokensPerDay:      cfg.RateLimit.TokensPerDay,
	})
	caller := llm.NewCaller(llm.NewClient(&llm.Config{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	}), limiter)
	enricher := service.NewEnricher(caller, time.Duration(cfg.Harvest.CoolingSecs)*time.Second)

	ledgers := make(map[string]*ledger.Ledger)
	var harvests []*service.HarvestService
	for _, src := range buildSources(cfg) {
		led := categoryLedger(ledgers, cfg.Harvest.DataDir, src.Category())
		maxAge := time.Duration(cfg.Harvest.MaxAgeDays) * 24 * time.Hour
		if src.ID() == "remoteok" && cfg.Sources.RemoteOK.MaxAgeDays > 0 {
			maxAge = time.Duration(cfg.Sources.RemoteOK.MaxAgeDays) * 24 * time.Hour
		}
		harvests = append(harvests, service.NewHarvestService(src, enricher, resolver, led, runRepo, maxAge))
	}
	if len(harvests) == 0 {
		appLogger.Warn("No sources enabled; only expiry and reconciliation will run")
	}

	manager := service.NewManager(jobRepo, service.NewReconciler(jobRepo), harvests, ledgers, service.ManagerConfig{
		Retention: time.Duration(cfg.Lifecycle.RetentionDays) * 24 * time.Hour,
		DataDir:   cfg.Harvest.DataDir,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = appLogger.WithContext(ctx)

	if *once {
		if err := manager.RunDaily(ctx); err != nil {
			appLogger.WithError(err).Fatal("Daily cycle failed")
		}
		return
	}

	sched := scheduler.New(manager, cfg.Lifecycle.Schedule, cfg.Lifecycle.RunOnStart)
	if err := sched.Start(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to start scheduler")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	sched.Stop()
	appLogger.Info("Scheduler stopped")
}

// buildSources assembles the enabled source adapters.
func buildSources(cfg *config.Config) []source.Source {
	var sources []source.Source
	if cfg.Sources.RemoteOK.Enabled {
		sources = append(sources, remoteok.New(cfg.Sources.RemoteOK.BaseURL))
	}
	for _, feed := range cfg.Sources.Feeds {
		sources = append(sources, wpfeed.New(feed.ID, feed.Category, feed.BaseURL))
	}
	return sources
}

// categoryLedger returns the staging ledger for a category, creating the
// handle on first use. Sources sharing a category share a ledger.
func categoryLedger(ledgers map[string]*ledger.Ledger, dataDir, category string) *ledger.Ledger {
	if led, ok := ledgers[category]; ok {
		return led
	}
	led := ledger.Open(filepath.Join(dataDir, strings.ToLower(category)+".csv"))
	ledgers[category] = led
	return led
}

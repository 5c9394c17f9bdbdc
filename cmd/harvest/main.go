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
		ServiceName: "jobharvest-harvest",
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	sourceID := flag.String("source", "all", "Source to harvest (source ID, or \"all\")")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
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

	sources := selectSources(cfg, *sourceID)
	if len(sources) == 0 {
		appLogger.WithField("source", *sourceID).Fatal("Unknown or disabled source")
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = appLogger.WithContext(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	failed := false
	for _, src := range sources {
		led := ledger.Open(filepath.Join(cfg.Harvest.DataDir, strings.ToLower(src.Category())+".csv"))
		maxAge := time.Duration(cfg.Harvest.MaxAgeDays) * 24 * time.Hour
		if src.ID() == "remoteok" && cfg.Sources.RemoteOK.MaxAgeDays > 0 {
			maxAge = time.Duration(cfg.Sources.RemoteOK.MaxAgeDays) * 24 * time.Hour
		}

		svc := service.NewHarvestService(src, enricher, resolver, led, runRepo, maxAge)
		run, err := svc.Run(ctx)
		if err != nil {
			appLogger.WithError(err).WithField("source", src.ID()).Error("Harvest failed")
			failed = true
			continue
		}
		appLogger.WithFields(logger.Fields{
			"source":     src.ID(),
			"fetched":    run.Fetched,
			"appended":   run.Appended,
			"duplicates": run.Duplicates,
			"too_old":    run.TooOld,
			"failed":     run.Failed,
		}).Info("Harvest completed")
	}
	if failed {
		os.Exit(1)
	}
}

// selectSources returns the enabled sources matching id, or all of them.
func selectSources(cfg *config.Config, id string) []source.Source {
	var sources []source.Source
	if cfg.Sources.RemoteOK.Enabled && (id == "all" || id == "remoteok") {
		sources = append(sources, remoteok.New(cfg.Sources.RemoteOK.BaseURL))
	}
	for _, feed := range cfg.Sources.Feeds {
		if id == "all" || id == feed.ID {
			sources = append(sources, wpfeed.New(feed.ID, feed.Category, feed.BaseURL))
		}
	}
	return sources
}

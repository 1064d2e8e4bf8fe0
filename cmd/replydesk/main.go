// Package main wires together the reply service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/api"
	"github.com/replydesk/replydesk/internal/auth"
	"github.com/replydesk/replydesk/internal/clock/system"
	"github.com/replydesk/replydesk/internal/config"
	"github.com/replydesk/replydesk/internal/crawler"
	"github.com/replydesk/replydesk/internal/logging"
	"github.com/replydesk/replydesk/internal/mailer"
	"github.com/replydesk/replydesk/internal/responder"
	"github.com/replydesk/replydesk/internal/settings"
	"github.com/replydesk/replydesk/internal/storage/postgres"
	"github.com/replydesk/replydesk/internal/whatsapp"
)

// seedAdminPassword is the initial credential for the seeded Admin account;
// operators are expected to change it through the reset flow.
const seedAdminPassword = "Admin"

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, postgres.PoolConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer pool.Close()

	adminHash, err := auth.HashPassword(seedAdminPassword)
	if err != nil {
		logger.Fatal("hash seed password failed", zap.Error(err))
	}
	if err := postgres.Migrate(ctx, pool, adminHash); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	faqStore := postgres.NewFAQStore(pool)
	knowledgeStore := postgres.NewKnowledgeStore(pool)
	settingsStore := postgres.NewSettingsStore(pool)
	userStore := postgres.NewUserStore(pool)
	tokenStore := postgres.NewTokenStore(pool)

	runtime := settings.NewRuntime(settingsStore)
	if err := runtime.Reload(ctx); err != nil {
		logger.Fatal("load settings failed", zap.Error(err))
	}

	fetcher := crawler.NewCollyFetcher(crawler.FetcherConfig{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	crawl := crawler.New(fetcher, knowledgeStore, logger.Named("crawler"), cfg.Crawler.Concurrency)

	sender := whatsapp.NewClient(func() whatsapp.Credentials {
		snap := runtime.Current()
		return whatsapp.Credentials{
			Token:         snap.APIToken,
			PhoneNumberID: snap.PhoneNumberID,
		}
	}, logger.Named("whatsapp"))

	mail := mailer.New(func() mailer.SMTPConfig {
		snap := runtime.Current()
		return mailer.SMTPConfig{
			Server:   snap.SMTPServer,
			Port:     snap.SMTPPort,
			Username: snap.SMTPUsername,
			Password: snap.SMTPPassword,
		}
	})

	authSvc := auth.NewService(userStore, tokenStore, mail, system.New(),
		cfg.Server.BaseURL, logger.Named("auth"))

	apiServer := api.NewServer(api.Deps{
		FAQs:          faqStore,
		SettingsStore: settingsStore,
		Runtime:       runtime,
		Responder:     responder.New(faqStore, knowledgeStore, cfg.Responder.Fallback),
		DenyList:      responder.NewDenyList(cfg.Moderation.DenyWords),
		Sender:        sender,
		Crawler:       crawl,
		Auth:          authSvc,
		Pinger:        pool,
		Logger:        logger.Named("api"),
	}, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seeksy/config"
	"seeksy/config/database"
	"seeksy/pkg/ai"
	"seeksy/pkg/logger"
	"seeksy/pkg/mailer"
	"seeksy/pkg/render"
	"seeksy/pkg/speech"
	"seeksy/pkg/storage"
	"seeksy/router"
	"seeksy/socket"
)

const shutdownTimeout = 15 * time.Second

func main() {
	settings, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Sugar.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(settings.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, settings.Database.DSN())
	if err != nil {
		logger.Sugar.Fatalf("Could not connect to database. Check your network or Supabase status: %v", err)
	}
	defer db.Close()

	if settings.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Sugar.Fatalf("Migration failed: %v", err)
		}
		logger.Sugar.Info("Schema is up to date")
	}

	hub := socket.NewHub()
	go hub.Run(ctx)

	services := router.NewServices(router.Deps{
		DB:                 db,
		Hub:                hub,
		AI:                 ai.NewClient(settings.AI.BaseURL, settings.AI.APIKey, settings.AI.Model, settings.AI.Timeout),
		Speech:             speech.NewClient(settings.Speech.BaseURL, settings.Speech.APIKey, settings.Speech.Model, settings.Speech.Timeout),
		Render:             render.NewClient(settings.Render.BaseURL, settings.Render.APIKey, settings.Render.Timeout),
		Mailer:             mailer.NewClient(settings.Mail.BaseURL, settings.Mail.APIKey, settings.MailFrom, settings.Mail.Timeout),
		Storage:            storage.NewClient(settings.Storage.BaseURL, settings.Storage.APIKey, settings.Storage.Timeout),
		RenderCallbackURL:  settings.RenderCallbackURL,
		RenderWebhookToken: settings.RenderWebhookToken,
	})

	go services.Clips.RunSyncWorker(ctx, settings.RenderSyncInterval, settings.RenderWebhookGrace)

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router.Setup(services, settings.JWTSecret, settings.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Seeksy backend listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

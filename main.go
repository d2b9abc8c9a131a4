package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"sessionresults/adapters/api"
	"sessionresults/adapters/timezone"
	"sessionresults/internal"
	"sessionresults/internal/config"
	"sessionresults/internal/session"
	"sessionresults/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))

	clientConfig := api.DefaultClientConfig(appConfig.Backend.URL)
	clientConfig.Timeout = appConfig.Backend.Timeout
	backend, err := api.NewClient(clientConfig, nil)
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pages := session.NewRegistry[*ui.Page](appConfig.Pages.TTL, logger)
	go pages.Run(ctx, appConfig.Pages.SweepInterval)

	app, err := ui.NewApp(ui.Config{RenderWait: appConfig.Server.RenderWait}, ui.Dependencies{
		Backend:  backend,
		Timezone: timezone.NewFormatter(timezone.SessionTimeLayout),
		Pages:    pages,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("results UI listening on %s (backend %s)", server.Addr, appConfig.Backend.URL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown: %v", err)
	}
	pages.Close()
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/panelwise/backend/internal/config"
	"github.com/panelwise/backend/internal/handler"
	"github.com/panelwise/backend/internal/service/history"
	"github.com/panelwise/backend/internal/service/provider"
	"github.com/panelwise/backend/internal/service/simulation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if !cfg.AI.Enabled() {
		log.Fatal("ark credentials missing: set ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY plus ARK_MODEL")
	}
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to initialize chat model: %v", err)
	}
	generator := provider.NewChatModelGenerator(chatModel)
	log.Println("generation provider initialized")

	historySvc := history.NewService(cfg.History.Limit)

	ctrl := simulation.NewController(generator, historySvc, simulation.Config{
		Model:         cfg.AI.Model,
		Temperature:   float32(cfg.Simulation.Temperature),
		MaxTokens:     cfg.Simulation.MaxTokens,
		HistoryWindow: cfg.Simulation.HistoryWindow,
	})

	router := handler.NewRouter(ctrl, historySvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Panelwise backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

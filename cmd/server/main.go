// Command server starts the thumbnail analyzer HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ai "github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/ai"
	httpserver "github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/httpserver"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/adapter/trends"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/app"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, provider and extraction instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	if cfg.GroqAPIKey == "" && cfg.DeepSeekAPIKey == "" && cfg.OpenRouterAPIKey == "" {
		slog.Warn("no provider API keys configured; provider-backed endpoints will fail")
	}

	// Adapters
	chat := ai.New(cfg)
	trendsSrc := trends.New(cfg)

	// Usecases
	keywords := usecase.NewKeywords(cfg, chat, trendsSrc)
	script := usecase.NewScript(cfg, chat)
	social := usecase.NewSocial(cfg, chat)
	vision := usecase.NewVision(cfg, chat)

	srv := httpserver.NewServer(cfg, keywords, script, social, vision)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

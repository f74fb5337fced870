// Package main is the terminal front end for the legal and tax assistant.
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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/capitalize-ai/legal-assistant/internal/config"
	"github.com/capitalize-ai/legal-assistant/internal/handler"
	"github.com/capitalize-ai/legal-assistant/internal/service"
	"github.com/capitalize-ai/legal-assistant/pkg/local"
	"github.com/capitalize-ai/legal-assistant/pkg/logger"
	"github.com/capitalize-ai/legal-assistant/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	envFile := flag.String("env", ".env", "path to a dotenv file")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.FromEnv(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.Error("assistant exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(ctx, "legal-assistant", cfg.Tracing.Endpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
					log.Warn("tracing shutdown failed", zap.Error(err))
				}
			}()
		}
	}

	assistant, err := service.New(cfg, service.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}
	assistant.Start(ctx)
	defer assistant.Stop()

	if err := assistant.Ready(); err != nil {
		log.Warn("assistant is not ready, requests will fail", zap.Error(err))
	}

	if cfg.MetricsAddr != "" {
		server := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           handler.NewRouter(assistant, log),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			log.Info("ops endpoint listening", zap.String("addr", cfg.MetricsAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("ops endpoint error", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warn("ops endpoint forced to shutdown", zap.Error(err))
			}
		}()
	}

	session := service.NewSession(assistant, local.ParseLanguage(cfg.Locale), cfg.HistoryLimit, log)
	log.Info("assistant started",
		zap.String("protocol", assistant.Protocol()),
		zap.String("language", string(session.Language())),
	)

	err = newREPL(session, os.Stdin, os.Stdout).run(ctx)
	log.Info("assistant stopped")
	return err
}

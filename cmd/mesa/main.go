// Command mesa runs the restaurant reservation conversation agent as an
// HTTP service.
//
// Usage:
//
//	GEMINI_API_KEY=... AIRTABLE_API_KEY=... mesa -config config.yaml
//
// Flags:
//
//	-config string   Path to the YAML config file (default: config.yaml)
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/mesabot/mesa/agent"
	"github.com/mesabot/mesa/airtable"
	"github.com/mesabot/mesa/api"
	"github.com/mesabot/mesa/config"
	"github.com/mesabot/mesa/gemini"
	"github.com/mesabot/mesa/sqlite"
	"github.com/mesabot/mesa/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mesa: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	var geminiOpts []gemini.Option
	if cfg.Gemini.Model != "" {
		geminiOpts = append(geminiOpts, gemini.WithModel(cfg.Gemini.Model))
	}
	provider, err := gemini.New(ctx, cfg.Gemini.APIKey, geminiOpts...)
	if err != nil {
		return err
	}

	reservations := airtable.New(cfg.Airtable.APIKey, cfg.Airtable.BaseID, cfg.Airtable.TableID)
	executor := tools.NewExecutor(reservations, cfg.Location(), logger)

	sessions, err := sqlite.New(cfg.Sessions.Path)
	if err != nil {
		return err
	}
	defer sessions.Close()

	controller := agent.NewController(provider, executor, logger)
	runner := agent.NewRunner(sessions, controller, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	api.NewHandler(runner, logger).RegisterRoutes(e)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("address", cfg.Listen.Address).Msg("starting server")
	if err := e.Start(cfg.Listen.Address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

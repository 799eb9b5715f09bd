package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dangue13/rlvs-discord-bot/internal/app"
	"github.com/dangue13/rlvs-discord-bot/internal/config"
	"github.com/dangue13/rlvs-discord-bot/internal/observability"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Local runs keep settings in .env; deployed environments set real
	// environment variables and have no file.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := run(cfg); err != nil {
		logging.Default().Error("bot exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger, drainLogs, err := observability.InitBetterStackLogger(cfg, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	defer drain(drainLogs, logger)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return err
	}
	defer drain(shutdownTracing, logger)

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	}()

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := observability.StopPprofServer(pprofSrv, logger, shutdownTimeout); err != nil {
			logger.Warn("pprof stop failed", "error", err)
		}
	}()

	bot, err := app.Build(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx)
}

func drain(fn func(context.Context) error, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("shutdown drain failed", "error", err)
	}
}

// Command sync runs one pipeline stage and exits. It suits cron jobs and
// platform schedulers that prefer a process per run over the HTTP trigger.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/football-sync/internal/app"
	"github.com/riskibarqy/football-sync/internal/config"
	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
	"github.com/riskibarqy/football-sync/internal/observability"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
	"github.com/riskibarqy/football-sync/internal/usecase"
)

func main() {
	stageFlag := flag.String("stage", string(syncrun.StageAll), "stage to run: all, competitions, teams or matches")
	trigger := flag.String("trigger", "cli", "trigger recorded on the sync run")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Default().Warn("load .env failed", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	code := run(cfg, logger, *stageFlag, *trigger)
	_ = logger.Sync()
	os.Exit(code)
}

func run(cfg config.Config, logger *logging.Logger, rawStage, trigger string) int {
	stage, err := syncrun.ParseStage(rawStage)
	if err != nil {
		logger.Error("invalid stage", "stage", rawStage, "error", err)
		return 2
	}

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	pipeline, closeFn, err := app.NewPipeline(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		return 1
	}
	defer func() { _ = closeFn() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Run(ctx, usecase.SyncRunInput{Stage: stage, Trigger: trigger})
	if err != nil {
		logger.Error("sync run failed", "stage", stage, "run_id", result.RunID, "error", err)
		return 1
	}

	out := jsoniter.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	_ = out.Encode(map[string]any{
		"run_id":  result.RunID,
		"message": result.Message,
		"stats":   result.Summary,
	})
	return 0
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/leagueops/league-rankings/internal/config"
	"github.com/leagueops/league-rankings/internal/domain/standing"
	"github.com/leagueops/league-rankings/internal/platform/logging"
	"github.com/leagueops/league-rankings/internal/usecase"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <results-file>\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	file, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open results file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rules := standing.Rules{
		WinPoints:  cfg.WinPoints,
		DrawPoints: cfg.DrawPoints,
		TopN:       cfg.TopN,
	}

	svc := usecase.NewIngestionService(rules, cfg.SkipMalformed, logger)
	stats, err := svc.Run(ctx, file, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "process results: %v\n", err)
		os.Exit(1)
	}

	logger.Info("season processed",
		"lines", stats.Lines,
		"applied", stats.Applied,
		"skipped", stats.Skipped,
		"matchdays", stats.Matchdays,
	)
}

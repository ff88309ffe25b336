// Package main loads a YAML fixture into the vmigrate data directory.
//
// Seeding is idempotent and can be re-run against a live data directory.
//
// Import Path: vmigrate.io/vmigrate/cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/config"
	"vmigrate.io/vmigrate/internal/pkg/logger"
	"vmigrate.io/vmigrate/internal/repository"
	"vmigrate.io/vmigrate/internal/seed"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	file := flag.String("file", "", "seed fixture (default: seed.file from config)")
	flag.Parse()

	if err := run(context.Background(), *configPath, *file); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if file == "" {
		file = cfg.Seed.File
	}
	if file == "" {
		return fmt.Errorf("no seed file: pass -file or set seed.file")
	}

	repos, err := repository.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open document stores: %w", err)
	}

	fixture, err := seed.LoadFile(file)
	if err != nil {
		return err
	}

	logger.Info("Starting data seeding...", zap.String("file", file), zap.String("data_dir", cfg.Storage.DataDir))
	if _, err := seed.Apply(ctx, repos, fixture); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}

	logger.Info("Data seeding completed successfully")
	return nil
}

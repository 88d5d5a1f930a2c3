package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/backoffice/internal/seed"
	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	file := flag.String("file", "", "JSON fixture with investors, financial_records and inventory")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "file": *file})

	if !cfg.DB.Enabled() {
		fmt.Fprintln(os.Stderr, "no database configured (set BACKOFFICE_DB_DSN or BACKOFFICE_DB_HOST)")
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		logg.Error(ctx, "failed to open fixture", err)
		os.Exit(1)
	}
	fixture, err := seed.ReadFixture(f)
	_ = f.Close()
	if err != nil {
		logg.Error(ctx, "failed to read fixture", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	importer, err := seed.NewImporter(dbClient, seed.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(ctx, "failed to create importer", err)
		os.Exit(1)
	}
	result, err := importer.Import(ctx, *fixture)
	if err != nil {
		logg.Error(ctx, "seed import failed", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d investors, %d financial records, %d inventory items\n",
		result.Investors, result.FinancialRecords, result.InventoryItems)
}

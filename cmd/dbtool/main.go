package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"trip-route-service/internal/adapters/repositories"
	"trip-route-service/internal/config"
	"trip-route-service/internal/platform/db"
	"trip-route-service/internal/platform/logger"

	"go.uber.org/zap"
)

// dbtool prepares the Postgres schema and loads demo trip plans.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	seedPath := flag.String("seed", cfg.Database.SeedPath, "seed file with trips and plans")
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	database, err := db.Open(cfg.Database.URL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	if err := initAndSeed(database, *seedPath, *schemaOnly, log); err != nil {
		log.Fatal("dbtool failed", zap.Error(err))
	}
}

func initAndSeed(database *sql.DB, seedPath string, schemaOnly bool, log *zap.Logger) error {
	log.Info("initializing database schema")
	if err := repositories.InitSchema(database); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("schema ready")

	if schemaOnly {
		return nil
	}

	log.Info("seeding database", zap.String("seed_path", seedPath))
	if err := repositories.SeedFromJSON(database, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("seeding complete")

	return nil
}

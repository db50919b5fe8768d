package main

import (
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/gruzdev-dev/codex-recipes/configs"
	"github.com/gruzdev-dev/codex-recipes/migrations"
	"github.com/gruzdev-dev/codex-recipes/pkg/logger"
)

func main() {
	cfg, err := configs.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg)

	if cfg.DB.Host == "" {
		log.Fatal("POSTGRES_HOST is required")
	}

	databaseURL := strings.Replace(cfg.DatabaseURL(), "postgres://", "pgx5://", 1)

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatalf("Failed to create source driver: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, databaseURL)
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}

	log.WithField("database", cfg.DB.Database).Info("Running database migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No migrations to apply")
			return
		}
		log.Fatalf("Migration failed: %v", err)
	}

	log.Info("Migrations completed successfully")
}

package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/moviegrab/moviegrab-go-bot/internal/logging"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	migrationPath := flag.String("migration-path", "./migrations", "Path to migration files from the pwd(!)")
	envFile := flag.String("env-file", ".env", "Path to .env file from the pwd(!)")
	flag.Parse()

	logger := logging.GetLogger().With().Str("service", "migration").Logger()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		logger.Fatal().Err(err).Msg("Error loading .env file")
	}

	absMigrationPath, err := filepath.Abs(*migrationPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error getting absolute path to migration files")
	}
	absMigrationPath = fmt.Sprintf("file://%s", absMigrationPath)

	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		dbName,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error opening database")
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("Error creating driver")
	}

	m, err := migrate.NewWithDatabaseInstance(absMigrationPath, dbName, driver)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error creating migration instance")
	}

	switch *direction {
	case "up":
		logger.Info().Msg("Running migration UP")
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			logger.Fatal().Err(err).Msg("Error running migration UP")
		}
		logger.Info().Msg("Migration UP completed successfully")

	case "down":
		logger.Info().Msg("Running migration DOWN")
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			logger.Fatal().Err(err).Msg("Error running migration DOWN")
		}
		logger.Info().Msg("Migration DOWN completed successfully")

	default:
		logger.Fatal().Msg("Invalid migration direction. Use 'up' or 'down'.")
	}

	version, dirty, err := m.Version()
	switch {
	case err == migrate.ErrNilVersion:
		logger.Info().Msg("Schema is empty, no version applied")
	case err != nil:
		logger.Warn().Err(err).Msg("Could not read schema version")
	default:
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")
	}
}

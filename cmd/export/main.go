// Command export writes the locally cached reservation snapshot to an
// xlsx file. It works entirely offline, so reports stay available while
// the backend is down.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"balneario/internal/config"
	"balneario/internal/database"
	"balneario/internal/export"
	"balneario/internal/logging"
	"balneario/internal/models"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	status := flag.String("status", "", "only export reservations in this state (pending, confirmed, cancellation_pending, cancelled, completed)")
	flag.Parse()

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" && *configPath == "configs/config.yaml" {
		*configPath = envPath
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := baseLogger.With().Str("component", "export-main").Logger()

	db, err := database.NewDB(cfg.Cache.Path)
	if err != nil {
		logger.Error().Err(err).Msg("cache database open failed")
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	age, err := db.CacheAge(ctx)
	if err != nil {
		return err
	}
	if age > 24*time.Hour {
		logger.Warn().Dur("age", age).Msg("reservation snapshot is stale, run the bot to refresh it")
	}

	var reservations []*models.Reservation
	if *status != "" {
		reservations, err = db.CachedReservationsByStatus(ctx, *status)
	} else {
		reservations, err = db.CachedReservations(ctx)
	}
	if err != nil {
		return err
	}
	if len(reservations) == 0 {
		logger.Warn().Msg("no cached reservations to export")
	}

	exporter := export.New(cfg.Exports, &logger)
	path, err := exporter.ExportReservations(reservations)
	if err != nil {
		return err
	}

	logger.Info().Str("path", path).Int("count", len(reservations)).Msg("export written")
	fmt.Println(path)
	return nil
}

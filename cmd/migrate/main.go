package main

import (
	"flag"
	"os"

	"github.com/labstack/gommon/log"

	"loan-ledger/internal/config"
	"loan-ledger/internal/infrastructure/db"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	logger := log.New("migrate")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if cfg.StoreDriver != config.StoreMySQL {
		logger.Infof("STORE_DRIVER=%s has no SQL migrations to apply", cfg.StoreDriver)
		os.Exit(0)
	}

	if err := db.Migrate(cfg.MySQLDSN(), *direction); err != nil {
		logger.Fatalf("migrate %s: %v", *direction, err)
	}
	logger.Infof("migrations %s: done", *direction)
}

package main

import (
	"context"

	"taxihub/config"
	"taxihub/pkg/logger"
	"taxihub/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	pg, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// Orders reference users, CASCADE cleans both.
	_, err = pg.GetPool().Exec(context.Background(), "TRUNCATE TABLE users, orders CASCADE")
	if err != nil {
		log.Error("failed to truncate tables", logger.Error(err))
	} else {
		log.Info("truncated users and orders tables")
	}
}

package main

import (
	"github.com/alterfero/dig4el-sub001/internal/config"
	"github.com/alterfero/dig4el-sub001/internal/server"
	"github.com/alterfero/dig4el-sub001/internal/storage"
	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/logger/console"
	pgxstore "github.com/alterfero/dig4el-sub001/pkg/store/pgx"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	cfg, err := config.Load(util.GetEnvString("CONFIG_FILE", "dig4el.yaml"))
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}

	if storage.SnapshotBackend() == storage.BackendPostgres {
		if err := pgxstore.Migrate(util.GetEnv("DATABASE_URL")); err != nil {
			logger.Fatal("Failed to migrate database", "err", err)
		}
	}

	server.Init(cfg)
}

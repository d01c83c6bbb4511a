package main

import (
	"github.com/sirupsen/logrus"

	"dispute-arbiter/internal/api"
	"dispute-arbiter/internal/bootstrap"
	"dispute-arbiter/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	bootstrap.ConfigureLogging(cfg)

	engine, err := bootstrap.Engine(cfg, bootstrap.Completer(cfg))
	if err != nil {
		logrus.Fatalf("build engine: %v", err)
	}

	db, err := bootstrap.Store(cfg.Store)
	if err != nil {
		logrus.Fatalf("open verdict store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	server, err := api.NewServer(api.Config{
		Engine:         engine,
		Store:          db,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	logrus.WithField("tuning", engine.Tuning()).Infof("starting dispute arbitration service on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}

package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"tracker/internal/config"
	"tracker/internal/db"
	"tracker/internal/server"
	"tracker/internal/session"
)

func main() {
	cfg := config.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	srv, err := server.New(database, cfg.TemplateDir, sessions, logger)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}
	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, srv); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

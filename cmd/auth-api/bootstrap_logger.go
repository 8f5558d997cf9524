package main

import (
	"go.uber.org/zap"

	config "github.com/NordCoder/Authly/internal/config/auth-api"
	"github.com/NordCoder/Authly/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(*cfg.AsLoggerConfig())
}

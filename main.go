// Package main is the entry point for the Remedial Portal admin console.
package main

import (
	"os"

	"github.com/remedialportal/console/cmd"
	"github.com/remedialportal/console/internal/config"
	"github.com/remedialportal/console/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	if err := config.Validate(cfg); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	cmd.Execute(cfg)
}

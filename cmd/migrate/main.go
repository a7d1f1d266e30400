//go:build migrate

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/refstars/bot/internal/config"
	"github.com/refstars/bot/internal/logger"
	"github.com/refstars/bot/internal/repository"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate <up|down|version|force N>")
		os.Exit(2)
	}

	zl, err := logger.New(config.LogConfig{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zl.Sync()

	db := config.LoadDatabase()
	m, err := repository.NewMigrator(db.MigrationURL())
	if err != nil {
		zl.Fatal("failed to open database", zap.String("driver", db.Driver), zap.Error(err))
	}
	defer m.Close()

	state, err := repository.MigrationCommand(m, os.Args[1], os.Args[2:])
	if err != nil {
		zl.Fatal("migration command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
	zl.Info("schema state", zap.String("command", os.Args[1]), zap.String("state", state))
}

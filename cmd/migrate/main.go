package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/pkg/config"
	"github.com/noah-isme/alumni-network-api/pkg/database"
	"github.com/noah-isme/alumni-network-api/pkg/logger"
)

func main() {
	var path string
	flag.StringVar(&path, "path", "./migrations", "Directory holding migration files")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	m, err := migrate.New("file://"+path, database.URL(cfg.Database))
	if err != nil {
		logr.Fatal("migration init failed", zap.Error(err))
	}
	defer m.Close()
	m.Log = &migrateLogger{logr: logr.Sugar()}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logr.Fatal("up failed", zap.Error(err))
		}
		logr.Info("migrations applied")
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				logr.Fatal("invalid steps argument", zap.String("steps", args[1]))
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logr.Fatal("down failed", zap.Error(err))
		}
		logr.Info("migrations rolled back", zap.Int("steps", steps))
	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			logr.Fatal("version failed", zap.Error(err))
		}
		fmt.Printf("version: %d dirty: %v\n", v, dirty)
	case "force":
		if len(args) < 2 {
			logr.Fatal("force requires a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			logr.Fatal("invalid version", zap.String("version", args[1]))
		}
		if err := m.Force(v); err != nil {
			logr.Fatal("force failed", zap.Error(err))
		}
		logr.Info("migration version forced", zap.Int("version", v))
	default:
		usage()
		os.Exit(2)
	}
}

type migrateLogger struct {
	logr *zap.SugaredLogger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) { l.logr.Infof(format, v...) }
func (l *migrateLogger) Verbose() bool                         { return false }

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [-path DIR] <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default 1)
  version      Print the current migration version
  force V      Set the version without running migrations`)
}

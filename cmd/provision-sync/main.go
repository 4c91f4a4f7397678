package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/repository"
	"github.com/noah-isme/alumni-network-api/internal/service"
	"github.com/noah-isme/alumni-network-api/pkg/config"
	"github.com/noah-isme/alumni-network-api/pkg/database"
	"github.com/noah-isme/alumni-network-api/pkg/identity"
	"github.com/noah-isme/alumni-network-api/pkg/logger"
)

// provision-sync invites every account that has no identity yet. It is safe to
// run repeatedly: accounts already invited or linked are skipped.
func main() {
	var (
		dryRun      bool
		failOnError bool
		timeout     time.Duration
	)
	flag.BoolVar(&dryRun, "dry-run", false, "Only count pending accounts")
	flag.BoolVar(&failOnError, "fail-on-error", false, "Exit with status 1 when any invitation fails")
	flag.DurationVar(&timeout, "timeout", 30*time.Minute, "Upper bound for the whole run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	code, err := run(cfg, logr, options{dryRun: dryRun, failOnError: failOnError, timeout: timeout})
	if err != nil {
		logr.Error("provision-sync failed", zap.Error(err))
		code = 1
	}
	if code != 0 {
		logr.Sync() //nolint:errcheck
		os.Exit(code)
	}
}

type options struct {
	dryRun      bool
	failOnError bool
	timeout     time.Duration
}

// run returns the process exit code. Deferred cleanup completes before main exits.
func run(cfg *config.Config, logr *zap.Logger, opts options) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return 1, fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	accounts := repository.NewAccountRepository(db)

	if opts.dryRun {
		pending, err := accounts.CountPendingInvitations(ctx)
		if err != nil {
			return 1, fmt.Errorf("count pending accounts: %w", err)
		}
		fmt.Printf("pending invitations: %d\n", pending)
		return 0, nil
	}

	provider, err := identity.NewClerkProvider(cfg.Identity)
	if err != nil {
		return 1, fmt.Errorf("identity provider: %w", err)
	}
	svc := service.NewProvisioningService(accounts, provider, service.NewMetricsService(), logr, service.ProvisioningConfig{
		BatchSize:      cfg.Provisioning.BatchSize,
		BatchDelay:     cfg.Provisioning.BatchDelay,
		FailureSamples: cfg.Provisioning.FailureSamples,
		RedirectURL:    cfg.Identity.RedirectURL,
	})

	report, err := svc.Run(ctx)
	if report != nil {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
	}
	if err != nil {
		return 1, fmt.Errorf("provisioning: %w", err)
	}
	if opts.failOnError && report.Failed > 0 {
		return 1, nil
	}
	return 0, nil
}

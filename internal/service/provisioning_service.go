package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/identity"
	"github.com/noah-isme/alumni-network-api/pkg/jobs"
)

// JobProvisionAccounts is the queue job kind that runs the invitation loop.
const JobProvisionAccounts = "provision_accounts"

type pendingAccountStore interface {
	ListPendingInvitations(ctx context.Context, limit int) ([]models.Account, error)
	MarkInvited(ctx context.Context, id, invitationID string, at time.Time) (bool, error)
}

type provisioningMetrics interface {
	RecordProvisioning(report models.ProvisioningReport)
}

// ProvisioningConfig tunes the invitation loop.
type ProvisioningConfig struct {
	BatchSize      int
	BatchDelay     time.Duration
	FailureSamples int
	RedirectURL    string
}

type invitationOutcome struct {
	account      models.Account
	invitationID string
	superseded   bool
	err          error
}

// ProvisioningService invites every account that has neither an external
// identity nor an outstanding invitation.
type ProvisioningService struct {
	accounts pendingAccountStore
	provider identity.Provider
	metrics  provisioningMetrics
	logger   *zap.Logger
	plan     batchPlan
	samples  int
	redirect string
	now      func() time.Time
	running  sync.Mutex
}

func NewProvisioningService(accounts pendingAccountStore, provider identity.Provider, metrics provisioningMetrics, logger *zap.Logger, cfg ProvisioningConfig) *ProvisioningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	samples := cfg.FailureSamples
	if samples <= 0 {
		samples = 10
	}
	return &ProvisioningService{
		accounts: accounts,
		provider: provider,
		metrics:  metrics,
		logger:   logger,
		plan:     newBatchPlan(cfg.BatchSize, cfg.BatchDelay),
		samples:  samples,
		redirect: cfg.RedirectURL,
		now:      time.Now,
	}
}

// Run executes one pass over the pending accounts. Only one pass runs at a
// time; a concurrent call fails with a conflict.
func (s *ProvisioningService) Run(ctx context.Context) (*models.ProvisioningReport, error) {
	if !s.running.TryLock() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "provisioning is already running")
	}
	defer s.running.Unlock()

	report := &models.ProvisioningReport{StartedAt: s.now().UTC(), FailureSamples: []string{}}
	pending, err := s.accounts.ListPendingInvitations(ctx, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending accounts")
	}

	outcomes, runErr := runBatches(ctx, s.plan, pending, s.invite, func(index, size int) {
		s.logger.Debug("invitation batch sent", zap.Int("batch", index+1), zap.Int("size", size))
	})

	for _, outcome := range outcomes {
		report.Attempted++
		if outcome.err != nil {
			report.Failed++
			report.FailureSamples = sampleFailures(report.FailureSamples, fmt.Sprintf("%s: %v", outcome.account.Email, outcome.err), s.samples)
			s.logger.Warn("invitation failed", zap.String("account_id", outcome.account.ID), zap.String("email", outcome.account.Email), zap.Error(outcome.err))
			continue
		}
		if outcome.superseded {
			report.Superseded++
			continue
		}
		report.Invited++
	}
	report.FinishedAt = s.now().UTC()

	if s.metrics != nil {
		s.metrics.RecordProvisioning(*report)
	}
	s.logger.Info("provisioning finished",
		zap.Int("pending", len(pending)),
		zap.Int("attempted", report.Attempted),
		zap.Int("invited", report.Invited),
		zap.Int("superseded", report.Superseded),
		zap.Int("failed", report.Failed),
	)
	if runErr != nil {
		return report, appErrors.Wrap(runErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provisioning interrupted")
	}
	return report, nil
}

func (s *ProvisioningService) invite(ctx context.Context, account models.Account) invitationOutcome {
	outcome := invitationOutcome{account: account}
	if account.UID == nil || *account.UID == "" {
		outcome.err = fmt.Errorf("account has no uid")
		return outcome
	}

	id, err := s.provider.CreateInvitation(ctx, identity.InvitationRequest{
		Email:       account.Email,
		UID:         *account.UID,
		RedirectURL: s.redirect,
	})
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.invitationID = id

	marked, err := s.accounts.MarkInvited(ctx, account.ID, id, s.now().UTC())
	switch {
	case err != nil:
		outcome.err = fmt.Errorf("invitation %s sent but not recorded: %w", id, err)
	case !marked:
		outcome.superseded = true
		s.logger.Info("account linked while invitation was in flight", zap.String("account_id", account.ID), zap.String("invitation_id", id))
	}
	return outcome
}

// HandleJob adapts Run to the job queue.
func (s *ProvisioningService) HandleJob(ctx context.Context, job jobs.Job) error {
	s.logger.Info("provisioning job started", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	_, err := s.Run(ctx)
	return err
}

// ProvisioningScheduler enqueues provisioning passes on the background queue.
type ProvisioningScheduler struct {
	queue *jobs.Queue
}

func NewProvisioningScheduler(queue *jobs.Queue) *ProvisioningScheduler {
	return &ProvisioningScheduler{queue: queue}
}

// Schedule returns the queued job id.
func (p *ProvisioningScheduler) Schedule(reason string) (string, error) {
	return p.queue.Submit(JobProvisionAccounts, reason)
}

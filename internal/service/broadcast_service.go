package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/mail"
)

type recipientLister interface {
	ListRecipients(ctx context.Context) ([]models.Recipient, error)
}

type broadcastMetrics interface {
	RecordBroadcast(report models.BroadcastReport, took time.Duration)
}

// BroadcastConfig tunes the bulk mail dispatcher.
type BroadcastConfig struct {
	BatchSize      int
	BatchDelay     time.Duration
	FailureSamples int
}

// BroadcastService mails an event invitation to every alumni with a usable
// address.
type BroadcastService struct {
	recipients recipientLister
	sender     mail.Sender
	template   *InvitationTemplate
	validator  *validator.Validate
	metrics    broadcastMetrics
	logger     *zap.Logger
	plan       batchPlan
	samples    int
	lifecycle  context.Context
}

// NewBroadcastService binds sends to lifecycle: a broadcast outlives the HTTP
// request that started it and stops between batches only when lifecycle ends.
func NewBroadcastService(lifecycle context.Context, recipients recipientLister, sender mail.Sender, tmpl *InvitationTemplate, validate *validator.Validate, metrics broadcastMetrics, logger *zap.Logger, cfg BroadcastConfig) *BroadcastService {
	if lifecycle == nil {
		lifecycle = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if tmpl == nil {
		tmpl = NewInvitationTemplate("")
	}
	samples := cfg.FailureSamples
	if samples <= 0 {
		samples = 10
	}
	return &BroadcastService{
		recipients: recipients,
		sender:     sender,
		template:   tmpl,
		validator:  validate,
		metrics:    metrics,
		logger:     logger,
		plan:       newBatchPlan(cfg.BatchSize, cfg.BatchDelay),
		samples:    samples,
		lifecycle:  lifecycle,
	}
}

// FilterRecipients keeps recipients whose address is non-empty and contains '@'.
func FilterRecipients(all []models.Recipient) []models.Recipient {
	out := make([]models.Recipient, 0, len(all))
	for _, r := range all {
		if plausibleEmail(r.Email) {
			r.Email = strings.TrimSpace(r.Email)
			out = append(out, r)
		}
	}
	return out
}

type sendOutcome struct {
	email string
	err   error
}

// Send validates the event, then dispatches in batches.
func (s *BroadcastService) Send(ctx context.Context, details models.EventDetails) (*models.BroadcastReport, error) {
	if err := s.validator.Struct(details); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event details")
	}

	all, err := s.recipients.ListRecipients(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipients")
	}
	recipients := FilterRecipients(all)
	if len(recipients) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoRecipients, "No alumni with valid email addresses found")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(s.lifecycle, cancel)
	defer stop()
	defer cancel()

	started := time.Now()
	subject := s.template.Subject(details)
	attachments := toMailAttachments(details.Attachments)

	send := func(ctx context.Context, r models.Recipient) sendOutcome {
		text, html, err := s.template.Render(details, r.Name)
		if err == nil {
			err = s.sender.Send(ctx, mail.Message{To: r.Email, Subject: subject, Text: text, HTML: html, Attachments: attachments})
		}
		return sendOutcome{email: r.Email, err: err}
	}

	report := &models.BroadcastReport{
		TotalAlumni:  len(recipients),
		Batches:      s.plan.Batches(len(recipients)),
		FailedEmails: []string{},
	}
	outcomes, runErr := runBatches(runCtx, s.plan, recipients, send, func(index, size int) {
		s.logger.Debug("mail batch sent", zap.Int("batch", index+1), zap.Int("size", size))
	})
	for _, o := range outcomes {
		if o.err != nil {
			report.FailedCount++
			report.FailedEmails = sampleFailures(report.FailedEmails, fmt.Sprintf("%s: %v", o.email, o.err), s.samples)
			continue
		}
		report.SuccessCount++
	}
	report.Success = runErr == nil
	report.Message = fmt.Sprintf("Emails sent to %d/%d alumni", report.SuccessCount, report.TotalAlumni)

	if s.metrics != nil {
		s.metrics.RecordBroadcast(*report, time.Since(started))
	}
	s.logger.Info("broadcast finished",
		zap.String("title", details.Title),
		zap.Int("total", report.TotalAlumni),
		zap.Int("sent", report.SuccessCount),
		zap.Int("failed", report.FailedCount),
	)
	if runErr != nil {
		return nil, appErrors.Wrap(runErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("broadcast interrupted after %d/%d alumni", report.SuccessCount, report.TotalAlumni))
	}
	return report, nil
}

func toMailAttachments(in []models.EventAttachment) []mail.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]mail.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, mail.Attachment{Filename: a.Filename, ContentType: a.ContentType, Data: a.Content})
	}
	return out
}

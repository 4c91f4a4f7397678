package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/models"
	"github.com/noah-isme/alumni-network-api/pkg/database"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/identity"
)

// MutationKind is what a webhook event asks the account store to do.
type MutationKind string

const (
	MutationIgnore        MutationKind = "ignore"
	MutationLink          MutationKind = "link"
	MutationCreate        MutationKind = "create"
	MutationUpdateProfile MutationKind = "update_profile"
)

// IdentityMutation is the plan derived from one webhook event.
type IdentityMutation struct {
	Kind       MutationKind
	AccountID  string
	ExternalID string
	Email      string
	Name       string
	Reason     string
}

// PlanIdentityEvent decides how an event changes the account store. byExternal
// is the account already linked to the event's user, byEmail the oldest
// account sharing its primary email. Either may be nil.
func PlanIdentityEvent(evt identity.Event, byExternal, byEmail *models.Account) IdentityMutation {
	m := IdentityMutation{
		Kind:       MutationIgnore,
		ExternalID: evt.Data.ID,
		Email:      evt.Data.Email(),
		Name:       evt.Data.DisplayName(),
	}
	if m.ExternalID == "" {
		m.Reason = "event carries no user id"
		return m
	}

	switch evt.Type {
	case identity.EventUserCreated:
		switch {
		case byExternal != nil:
			m.AccountID = byExternal.ID
			m.Reason = "identity already linked"
		case m.Email == "":
			m.Reason = "event carries no email address"
		case byEmail == nil:
			m.Kind = MutationCreate
		case byEmail.ExternalID != nil:
			m.AccountID = byEmail.ID
			m.Reason = "email already linked to another identity"
		default:
			m.Kind = MutationLink
			m.AccountID = byEmail.ID
		}
	case identity.EventUserUpdated:
		if byExternal == nil {
			m.Reason = "identity not linked to any account"
			return m
		}
		m.Kind = MutationUpdateProfile
		m.AccountID = byExternal.ID
		if m.Email == "" {
			m.Email = byExternal.Email
		}
	default:
		m.Reason = "unhandled event type " + evt.Type
	}
	return m
}

type identityAccountStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, account *models.Account) error
	LinkIdentity(ctx context.Context, id, externalID string, at time.Time) error
	UpdateIdentityProfile(ctx context.Context, externalID, name, email string) (int64, error)
}

type webhookMetrics interface {
	RecordWebhook(eventType, outcome string)
}

// IdentityEventService applies identity provider webhooks to local accounts.
type IdentityEventService struct {
	accounts identityAccountStore
	metrics  webhookMetrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewIdentityEventService(accounts identityAccountStore, metrics webhookMetrics, logger *zap.Logger) *IdentityEventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityEventService{accounts: accounts, metrics: metrics, logger: logger, now: time.Now}
}

// Handle plans and applies one event. Redelivered events plan to ignore.
func (s *IdentityEventService) Handle(ctx context.Context, evt identity.Event) (IdentityMutation, error) {
	byExternal, err := lookupAccount(func() (*models.Account, error) { return s.accounts.FindByExternalID(ctx, evt.Data.ID) })
	if err != nil {
		return IdentityMutation{}, s.fail(evt.Type, err)
	}
	var byEmail *models.Account
	if email := evt.Data.Email(); email != "" && evt.Type == identity.EventUserCreated && byExternal == nil {
		byEmail, err = lookupAccount(func() (*models.Account, error) { return s.accounts.FindByEmail(ctx, email) })
		if err != nil {
			return IdentityMutation{}, s.fail(evt.Type, err)
		}
	}

	plan := PlanIdentityEvent(evt, byExternal, byEmail)
	now := s.now().UTC()
	switch plan.Kind {
	case MutationLink:
		err = s.accounts.LinkIdentity(ctx, plan.AccountID, plan.ExternalID, now)
	case MutationCreate:
		externalID := plan.ExternalID
		account := &models.Account{
			Email:          plan.Email,
			Name:           plan.Name,
			ExternalID:     &externalID,
			InvitationSent: true,
			LinkedAt:       &now,
			Role:           models.RoleUser,
		}
		err = s.accounts.Insert(ctx, nil, account)
		plan.AccountID = account.ID
		if database.IsUniqueViolation(err) {
			// A concurrent delivery of the same event won the insert.
			plan.Kind, plan.Reason, err = MutationIgnore, "identity already linked", nil
		}
	case MutationUpdateProfile:
		_, err = s.accounts.UpdateIdentityProfile(ctx, plan.ExternalID, plan.Name, plan.Email)
	}
	if err != nil {
		return plan, s.fail(evt.Type, err)
	}

	if s.metrics != nil {
		s.metrics.RecordWebhook(evt.Type, string(plan.Kind))
	}
	s.logger.Info("identity event applied",
		zap.String("type", evt.Type),
		zap.String("external_id", plan.ExternalID),
		zap.String("mutation", string(plan.Kind)),
		zap.String("reason", plan.Reason),
	)
	return plan, nil
}

func lookupAccount(find func() (*models.Account, error)) (*models.Account, error) {
	account, err := find()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return account, err
}

func (s *IdentityEventService) fail(eventType string, err error) error {
	if s.metrics != nil {
		s.metrics.RecordWebhook(eventType, "error")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply identity event")
}

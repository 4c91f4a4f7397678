package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type verificationStore interface {
	FindByUID(ctx context.Context, uid string) (*models.Account, error)
	SetVerified(ctx context.Context, uid string, verified bool) (*models.Account, error)
}

// AccountService manages account verification.
type AccountService struct {
	accounts  verificationStore
	validator *validator.Validate
	logger    *zap.Logger
}

func NewAccountService(accounts verificationStore, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{accounts: accounts, validator: validate, logger: logger}
}

// SetVerification toggles the verified flag of the account owning uid.
func (s *AccountService) SetVerification(ctx context.Context, uid string, req dto.SetVerificationRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "verified must be a boolean")
	}
	account, err := s.accounts.SetVerified(ctx, uid, *req.Verified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update verification")
	}
	s.logger.Info("account verification changed", zap.String("uid", uid), zap.Bool("verified", account.Verified))
	return account, nil
}

// IsVerified answers for uid. Unknown uids fail with not found carrying
// verified=false in the error details.
func (s *AccountService) IsVerified(ctx context.Context, uid string) (*models.VerificationStatus, error) {
	account, err := s.accounts.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "account not found"),
				models.VerificationStatus{UID: uid, Verified: false})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	return &models.VerificationStatus{UID: uid, Verified: account.Verified}, nil
}

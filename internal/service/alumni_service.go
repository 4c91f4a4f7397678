package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	"github.com/noah-isme/alumni-network-api/pkg/database"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/identity"
)

const recentAlumniLimit = 5

type alumniDirectoryRepository interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, alumni *models.Alumni) error
	FindByUID(ctx context.Context, uid string) (*models.Alumni, error)
	List(ctx context.Context, filter models.AlumniFilter) ([]models.Alumni, int, error)
	ListRecent(ctx context.Context, limit int) ([]models.RecentAlumni, error)
	UpdateFields(ctx context.Context, uid string, fields map[string]interface{}) (*models.Alumni, error)
}

type registrationAccountStore interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, account *models.Account) error
	AttachAlumni(ctx context.Context, exec sqlx.ExtContext, id, uid, alumniRef string, verified bool) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type directoryCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	InvalidateDirectory(ctx context.Context)
}

// DirectoryPage is one cached page of the alumni directory.
type DirectoryPage struct {
	Items      []models.Alumni   `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

// AlumniService serves the directory and alumni self-service operations.
type AlumniService struct {
	alumni    alumniDirectoryRepository
	accounts  registrationAccountStore
	tx        txProvider
	provider  identity.Provider
	cache     directoryCache
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

func NewAlumniService(alumni alumniDirectoryRepository, accounts registrationAccountStore, tx txProvider, provider identity.Provider, cache directoryCache, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *AlumniService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AlumniService{
		alumni:    alumni,
		accounts:  accounts,
		tx:        tx,
		provider:  provider,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// List returns a directory page, served from cache when possible.
func (s *AlumniService) List(ctx context.Context, query dto.DirectoryQuery) (*DirectoryPage, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query")
	}
	filter := query.Filter()
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	key := DirectoryKey(filter)
	if s.cache != nil {
		var cached DirectoryPage
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	items, total, err := s.alumni.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alumni")
	}
	page := &DirectoryPage{
		Items:      items,
		Pagination: models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total},
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, page, s.cacheTTL)
	}
	return page, nil
}

// Get returns one alumni record by uid.
func (s *AlumniService) Get(ctx context.Context, uid string) (*models.Alumni, error) {
	alumni, err := s.alumni.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get alumni")
	}
	return alumni, nil
}

// Recent lists the alumni whose accounts were linked most recently.
func (s *AlumniService) Recent(ctx context.Context) ([]models.RecentAlumni, error) {
	items, err := s.alumni.ListRecent(ctx, recentAlumniLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent alumni")
	}
	return items, nil
}

// UpdateProfile applies a partial update to the caller's own alumni record.
func (s *AlumniService) UpdateProfile(ctx context.Context, principal *models.Principal, req dto.ProfileUpdateRequest) (*models.Alumni, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	uid := principal.UID()
	if uid == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no alumni profile is linked to this account")
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	updated, err := s.alumni.UpdateFields(ctx, uid, fields)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	if s.cache != nil {
		s.cache.InvalidateDirectory(ctx)
	}
	return updated, nil
}

// Register creates the caller's alumni record with their register number as
// uid. The account created by the identity webhook is reused when present;
// otherwise a new one is inserted. Self-registered accounts start unverified.
func (s *AlumniService) Register(ctx context.Context, principal *models.Principal, req dto.RegistrationRequest) (*models.Alumni, error) {
	if principal == nil || principal.ExternalID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if principal.UID() != "" {
		return nil, appErrors.Clone(appErrors.ErrConflict, "account is already registered")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	regNo := strings.TrimSpace(req.RegNo)
	year := req.YearOfPassingOut
	record := &models.Alumni{
		UID:                  regNo,
		RegisterNo:           &regNo,
		Name:                 strings.TrimSpace(req.Name),
		YearOfPassingOut:     &year,
		Course:               req.Course,
		Department:           req.Department,
		Address:              req.Address,
		Email:                strings.TrimSpace(req.Email),
		ContactNo:            req.ContactNo,
		Occupation:           req.Occupation,
		PlaceOfWork:          req.PlaceOfWork,
		Designation:          req.Designation,
		OfficialAddress:      req.OfficialAddress,
		HigherEducation:      req.HigherEducation,
		HighestDegree:        req.HighestDegree,
		AreaOfExpertise:      req.AreaOfExpertise,
		ContactsOfBatchmates: req.ContactsOfBatchmates,
		WillingToContact:     req.WillingToContact,
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.alumni.Insert(ctx, tx, record); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "register number is already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create alumni")
	}

	if principal.Account != nil {
		err = s.accounts.AttachAlumni(ctx, tx, principal.Account.ID, record.UID, record.ID, false)
	} else {
		now := s.now().UTC()
		externalID := principal.ExternalID
		uid := record.UID
		ref := record.ID
		err = s.accounts.Insert(ctx, tx, &models.Account{
			Email:          record.Email,
			Name:           record.Name,
			UID:            &uid,
			ExternalID:     &externalID,
			InvitationSent: true,
			LinkedAt:       &now,
			Role:           models.RoleUser,
			AlumniRef:      &ref,
		})
	}
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "account is already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link account")
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit registration")
	}

	if s.provider != nil {
		if perr := s.provider.SetUID(ctx, principal.ExternalID, record.UID); perr != nil {
			s.logger.Warn("uid not pushed to identity provider", zap.String("external_id", principal.ExternalID), zap.Error(perr))
		}
	}
	if s.cache != nil {
		s.cache.InvalidateDirectory(ctx)
	}
	s.logger.Info("alumni registered", zap.String("uid", record.UID), zap.String("external_id", principal.ExternalID))
	return record, nil
}

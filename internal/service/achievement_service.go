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

type achievementRepository interface {
	List(ctx context.Context) ([]models.Achievement, error)
	FindByID(ctx context.Context, id string) (*models.Achievement, error)
	Create(ctx context.Context, achievement *models.Achievement) error
	Update(ctx context.Context, achievement *models.Achievement) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AchievementService manages landing page achievements.
type AchievementService struct {
	repo      achievementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewAchievementService(repo achievementRepository, validate *validator.Validate, logger *zap.Logger) *AchievementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AchievementService{repo: repo, validator: validate, logger: logger}
}

// List returns achievements newest first.
func (s *AchievementService) List(ctx context.Context) ([]models.Achievement, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return items, nil
}

func (s *AchievementService) Get(ctx context.Context, id string) (*models.Achievement, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get achievement")
	}
	return item, nil
}

func (s *AchievementService) Create(ctx context.Context, req dto.AchievementRequest) (*models.Achievement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "all fields are required")
	}
	item := fromAchievementRequest(req)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create achievement")
	}
	return item, nil
}

func (s *AchievementService) Update(ctx context.Context, id string, req dto.AchievementRequest) (*models.Achievement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "all fields are required")
	}
	item := fromAchievementRequest(req)
	item.ID = id
	found, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update achievement")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
	}
	return s.Get(ctx, id)
}

func (s *AchievementService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete achievement")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
	}
	return nil
}

func fromAchievementRequest(req dto.AchievementRequest) *models.Achievement {
	return &models.Achievement{
		Title:             req.Title,
		Description:       req.Description,
		Image:             req.Image,
		AlumniName:        req.AlumniName,
		AlumniDesignation: req.AlumniDesignation,
	}
}

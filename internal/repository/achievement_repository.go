package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/alumni-network-api/internal/models"
)

const achievementColumns = `id, title, description, image, alumni_name, alumni_designation, created_at, updated_at`

// AchievementRepository persists landing page achievements.
type AchievementRepository struct {
	db *sqlx.DB
}

func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// List returns every achievement, newest first.
func (r *AchievementRepository) List(ctx context.Context) ([]models.Achievement, error) {
	achievements := []models.Achievement{}
	if err := r.db.SelectContext(ctx, &achievements, `SELECT `+achievementColumns+` FROM achievements ORDER BY created_at DESC, id`); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}

func (r *AchievementRepository) FindByID(ctx context.Context, id string) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := r.db.GetContext(ctx, &achievement, `SELECT `+achievementColumns+` FROM achievements WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *AchievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	if achievement.ID == "" {
		achievement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	achievement.CreatedAt = now
	achievement.UpdatedAt = now
	const query = `INSERT INTO achievements (` + achievementColumns + `)
        VALUES (:id, :title, :description, :image, :alumni_name, :alumni_designation, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, achievement); err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

// Update overwrites every editable field and reports whether the row existed.
func (r *AchievementRepository) Update(ctx context.Context, achievement *models.Achievement) (bool, error) {
	achievement.UpdatedAt = time.Now().UTC()
	const query = `UPDATE achievements SET title = :title, description = :description, image = :image,
        alumni_name = :alumni_name, alumni_designation = :alumni_designation, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, achievement)
	if err != nil {
		return false, fmt.Errorf("update achievement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update achievement: %w", err)
	}
	return affected > 0, nil
}

// Delete removes an achievement and reports whether it existed.
func (r *AchievementRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM achievements WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete achievement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete achievement: %w", err)
	}
	return affected > 0, nil
}

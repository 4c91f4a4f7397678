package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type achievementRepoFake struct {
	items map[string]models.Achievement
}

func (f *achievementRepoFake) List(context.Context) ([]models.Achievement, error) {
	out := make([]models.Achievement, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

func (f *achievementRepoFake) FindByID(_ context.Context, id string) (*models.Achievement, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (f *achievementRepoFake) Create(_ context.Context, a *models.Achievement) error {
	a.ID = fmt.Sprintf("ach-%d", len(f.items)+1)
	f.items[a.ID] = *a
	return nil
}

func (f *achievementRepoFake) Update(_ context.Context, a *models.Achievement) (bool, error) {
	if _, ok := f.items[a.ID]; !ok {
		return false, nil
	}
	f.items[a.ID] = *a
	return true, nil
}

func (f *achievementRepoFake) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func achievementRequest(title string) dto.AchievementRequest {
	return dto.AchievementRequest{Title: title, Description: "Led the mission", Image: "https://cdn.example.com/a.png", AlumniName: "Asha Rao", AlumniDesignation: "Scientist"}
}

func TestAchievementLifecycle(t *testing.T) {
	svc := NewAchievementService(&achievementRepoFake{items: map[string]models.Achievement{}}, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, achievementRequest("Mars orbiter"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	updated, err := svc.Update(ctx, created.ID, achievementRequest("Mars orbiter launch"))
	require.NoError(t, err)
	assert.Equal(t, "Mars orbiter launch", updated.Title)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAchievementErrors(t *testing.T) {
	svc := NewAchievementService(&achievementRepoFake{items: map[string]models.Achievement{}}, nil, nil)
	ctx := context.Background()

	req := achievementRequest("Mars orbiter")
	req.Image = ""
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Update(ctx, "missing", achievementRequest("x"))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), appErrors.ErrNotFound)
}
